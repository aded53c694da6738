package v1

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/core/srv"
	"github.com/opencurrent/opencurrent/app/logic/v1/process"
	"github.com/opencurrent/opencurrent/app/store/vectorstore"
	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/session"
	"github.com/opencurrent/opencurrent/pkg/types"
)

// fakeDriver satisfies srv.AIDriver with canned behavior, hashing words
// into tiny deterministic vectors so retrieval works without a network.
type fakeDriver struct {
	generateFn  func(ctx context.Context, prompt string) (ai.GenerateResponse, error)
	extractFn   func(ctx context.Context, content string) (*ai.SummaryEntity, error)
	readerFn    func(ctx context.Context, endpoint string) (*ai.ReaderResult, error)
	overLimit   bool
	generated   []string
	extractedIn []string
}

func (f *fakeDriver) embed(content []string) ai.EmbeddingResult {
	data := make([][]float32, 0, len(content))
	for _, text := range content {
		v := make([]float32, 8)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			var h uint32
			for _, r := range w {
				h = h*31 + uint32(r)
			}
			v[h%8]++
		}
		data = append(data, v)
	}
	return ai.EmbeddingResult{Data: data}
}

func (f *fakeDriver) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return f.embed(content), nil
}

func (f *fakeDriver) EmbeddingForDocument(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return f.embed(content), nil
}

func (f *fakeDriver) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	f.generated = append(f.generated, prompt)
	if f.generateFn != nil {
		return f.generateFn(ctx, prompt)
	}
	return ai.GenerateResponse{Received: []string{"canned answer"}}, nil
}

func (f *fakeDriver) Extract(ctx context.Context, content string) (*ai.SummaryEntity, error) {
	f.extractedIn = append(f.extractedIn, content)
	if f.extractFn != nil {
		return f.extractFn(ctx, content)
	}
	return &ai.SummaryEntity{SubjectName: "subject", Summary: "a summary"}, nil
}

func (f *fakeDriver) Reader(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
	if f.readerFn != nil {
		return f.readerFn(ctx, endpoint)
	}
	return &ai.ReaderResult{
		Title:   "Example Page",
		URL:     endpoint,
		Content: "# Intro\n\nGo testing guide content.\n\n# Deep Dive\n\nMore about goroutines and channels.",
	}, nil
}

func (f *fakeDriver) PromptIsOverLimit(prompt string) bool {
	return f.overLimit
}

type fakeSearcher struct {
	results  []types.SearchResult
	err      error
	searchFn func(ctx context.Context, query string) ([]types.SearchResult, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, query)
	}
	return f.results, f.err
}

func newTestCore(t *testing.T, driver *fakeDriver, searcher srv.Searcher) *core.Core {
	t.Helper()
	cfg := core.CoreConfig{
		Vector: core.VectorConfig{Driver: core.VectorDriverMemory},
		Data:   core.DataConfig{Dir: t.TempDir()},
		Ingest: core.IngestConfig{
			Workers:            1,
			QueueSize:          4,
			TaskTimeoutSeconds: 5,
			ScratchTTLMinutes:  1,
		},
		Request: core.RequestConfig{TimeoutSeconds: 5},
	}
	c := core.MustSetupCore(cfg)
	c.SetSrv(srv.SetupSrvs(srv.ApplyAIDriver(driver), srv.ApplySearcher(searcher)))
	c.SetCollections(vectorstore.NewMemoryCollectionStore(driver))
	return c
}

func errCode(t *testing.T, err error) int {
	t.Helper()
	cerr, ok := err.(*errors.CustomizedError)
	require.True(t, ok, "expected CustomizedError, got %T: %v", err, err)
	return cerr.GetCode()
}

func TestChatAnswerUnknownSession(t *testing.T) {
	ct := newTestCore(t, &fakeDriver{}, &fakeSearcher{})
	logic := NewChatLogic(context.Background(), ct)

	_, err := logic.Answer("web-missing", "what is this about?")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}

func TestChatAnswerUsesRetrievedContext(t *testing.T) {
	driver := &fakeDriver{}
	ct := newTestCore(t, driver, &fakeSearcher{})
	ctx := context.Background()

	sessionID := session.Derive("https://example.com/guide")
	_, err := ct.Collections().GetOrCreate(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, ct.Collections().AddChunks(ctx, sessionID, []types.Chunk{
		{ID: "c-0", Content: "goroutines are lightweight threads", Sequence: 0},
		{ID: "c-1", Content: "channels connect goroutines", Sequence: 1},
	}))

	logic := NewChatLogic(ctx, ct)
	answer, err := logic.Answer(sessionID, "goroutines are lightweight threads")
	require.NoError(t, err)
	assert.Equal(t, "canned answer", answer.Answer)
	assert.Equal(t, sessionID, answer.SessionID)

	require.Len(t, driver.generated, 1)
	prompt := driver.generated[0]
	assert.Contains(t, prompt, "goroutines are lightweight threads")
	assert.Contains(t, prompt, "QUESTION:")
	assert.NotContains(t, prompt, "{context}")
	assert.NotContains(t, prompt, "{question}")
}

func TestChatAnswerEmptyCollectionSkipsModel(t *testing.T) {
	driver := &fakeDriver{}
	ct := newTestCore(t, driver, &fakeSearcher{})
	ctx := context.Background()

	sessionID := session.Derive("https://example.com/empty")
	_, err := ct.Collections().GetOrCreate(ctx, sessionID)
	require.NoError(t, err)

	logic := NewChatLogic(ctx, ct)
	answer, err := logic.Answer(sessionID, "anything")
	require.NoError(t, err)
	assert.Equal(t, ai.NoRelevantContextMessage, answer.Answer)
	assert.Empty(t, driver.generated)
}

func TestChatAnswerOversizedPrompt(t *testing.T) {
	driver := &fakeDriver{overLimit: true}
	ct := newTestCore(t, driver, &fakeSearcher{})
	ctx := context.Background()

	sessionID := session.Derive("https://example.com/big")
	_, err := ct.Collections().GetOrCreate(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, ct.Collections().AddChunks(ctx, sessionID, []types.Chunk{
		{ID: "c-0", Content: "some content here", Sequence: 0},
	}))

	logic := NewChatLogic(ctx, ct)
	_, err = logic.Answer(sessionID, "some content here")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	assert.Empty(t, driver.generated)
}

func TestSummarizeDeletesScratchCollection(t *testing.T) {
	driver := &fakeDriver{}
	ct := newTestCore(t, driver, &fakeSearcher{})
	ctx := context.Background()

	logic := NewSummaryLogic(ctx, ct)
	entity, err := logic.Summarize("https://example.com/article")
	require.NoError(t, err)
	assert.Equal(t, "a summary", entity.Summary)
	assert.Equal(t, "https://example.com/article", entity.Link)
	assert.Equal(t, "Example Page", entity.Title)

	leaked, err := ct.Collections().ListScratchBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, leaked, "scratch collection must not survive the request")
}

func TestSummarizeCleansUpOnExtractFailure(t *testing.T) {
	driver := &fakeDriver{
		extractFn: func(ctx context.Context, content string) (*ai.SummaryEntity, error) {
			return nil, assert.AnError
		},
	}
	ct := newTestCore(t, driver, &fakeSearcher{})
	ctx := context.Background()

	logic := NewSummaryLogic(ctx, ct)
	_, err := logic.Summarize("https://example.com/article")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, errCode(t, err))

	leaked, err := ct.Collections().ListScratchBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, leaked, "scratch collection must be deleted on failure too")
}

func TestSummarizeFetchFailed(t *testing.T) {
	driver := &fakeDriver{
		readerFn: func(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
			return nil, assert.AnError
		},
	}
	ct := newTestCore(t, driver, &fakeSearcher{})

	logic := NewSummaryLogic(context.Background(), ct)
	_, err := logic.Summarize("https://example.com/broken")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, errCode(t, err))
	assert.Equal(t, i18n.ERROR_FETCH_FAILED, err.(*errors.CustomizedError).Message())
}

func TestSummarizeEmptyContent(t *testing.T) {
	driver := &fakeDriver{
		readerFn: func(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
			return &ai.ReaderResult{Title: "Blank", URL: endpoint, Content: "   \n\n  "}, nil
		},
	}
	ct := newTestCore(t, driver, &fakeSearcher{})

	logic := NewSummaryLogic(context.Background(), ct)
	_, err := logic.Summarize("https://example.com/blank")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, errCode(t, err))
}

func TestSearchRecordsHistory(t *testing.T) {
	searcher := &fakeSearcher{results: []types.SearchResult{
		{Title: "Result", Link: "https://example.com", Snippet: "snippet"},
	}}
	ct := newTestCore(t, &fakeDriver{}, searcher)
	ctx := context.Background()

	logic := NewSearchLogic(ctx, ct)
	results, err := logic.Search("golang concurrency")
	require.NoError(t, err)
	require.Len(t, results, 1)

	doc, err := ct.History().List(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Searches, 1)
	assert.Equal(t, "golang concurrency", doc.Searches[0].Query)
}

func TestSearchFailure(t *testing.T) {
	ct := newTestCore(t, &fakeDriver{}, &fakeSearcher{err: assert.AnError})

	logic := NewSearchLogic(context.Background(), ct)
	_, err := logic.Search("anything")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errCode(t, err))

	doc, lerr := ct.History().List(context.Background())
	require.NoError(t, lerr)
	assert.Empty(t, doc.Searches, "failed searches are not recorded")
}

func TestSynchronousPathsCarryDeadline(t *testing.T) {
	driver := &fakeDriver{}
	var readerDeadline, generateDeadline, searchDeadline bool
	driver.readerFn = func(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
		_, readerDeadline = ctx.Deadline()
		return &ai.ReaderResult{
			Title:   "Example Page",
			URL:     endpoint,
			Content: "# Intro\n\nshort body for the scratch collection.",
		}, nil
	}
	driver.generateFn = func(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
		_, generateDeadline = ctx.Deadline()
		return ai.GenerateResponse{Received: []string{"ok"}}, nil
	}
	searcher := &fakeSearcher{searchFn: func(ctx context.Context, query string) ([]types.SearchResult, error) {
		_, searchDeadline = ctx.Deadline()
		return nil, nil
	}}
	ct := newTestCore(t, driver, searcher)
	ctx := context.Background()

	_, err := NewSummaryLogic(ctx, ct).Summarize("https://example.com/page")
	require.NoError(t, err)
	assert.True(t, readerDeadline, "summarize must bound the reader call")

	sessionID := session.Derive("https://example.com/page")
	_, err = ct.Collections().GetOrCreate(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, ct.Collections().AddChunks(ctx, sessionID, []types.Chunk{
		{ID: "c-0", Content: "short body for the scratch collection.", Sequence: 0},
	}))
	_, err = NewChatLogic(ctx, ct).Answer(sessionID, "short body")
	require.NoError(t, err)
	assert.True(t, generateDeadline, "chat must bound the model call")

	_, err = NewSearchLogic(ctx, ct).Search("anything")
	require.NoError(t, err)
	assert.True(t, searchDeadline, "search must bound the upstream call")
}

func TestKnowledgeSaveConflict(t *testing.T) {
	ct := newTestCore(t, &fakeDriver{}, &fakeSearcher{})
	logic := NewKnowledgeLogic(context.Background(), ct)

	entry := types.KnowledgeEntry{Title: "Post", Link: "https://example.com/post", Summary: "s"}
	saved, err := logic.Save(entry)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	_, err = logic.Save(entry)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, errCode(t, err))

	require.NoError(t, logic.Delete(saved.ID))
	err = logic.Delete(saved.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}

func TestIngestLifecycle(t *testing.T) {
	driver := &fakeDriver{}
	ct := newTestCore(t, driver, &fakeSearcher{})
	proc := process.NewIngestProcess(ct)
	proc.Start()
	defer proc.Stop()

	ctx := context.Background()
	logic := NewIngestLogic(ctx, ct, proc)

	url := "https://example.com/guide"
	receipt, err := logic.StartIngest(url)
	require.NoError(t, err)
	assert.Equal(t, session.Derive(url), receipt.SessionID)
	assert.False(t, receipt.Already)

	require.Eventually(t, func() bool {
		res, serr := logic.Status(receipt.SessionID)
		return serr == nil && res.Status == types.IngestStatusReady
	}, 5*time.Second, 10*time.Millisecond)

	count, err := ct.Collections().Count(ctx, receipt.SessionID)
	require.NoError(t, err)
	assert.Greater(t, count, int64(0))

	// The ingestion is recorded in the chat history.
	doc, err := ct.History().List(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Chats, 1)
	assert.Equal(t, url, doc.Chats[0].URL)
	assert.Equal(t, receipt.SessionID, doc.Chats[0].SessionID)

	// Re-submitting a populated url does no work again.
	receipt, err = logic.StartIngest(url)
	require.NoError(t, err)
	assert.True(t, receipt.Already)
	assert.Equal(t, types.IngestStatusReady, receipt.Status)
}

func TestIngestStatusUnknownSession(t *testing.T) {
	ct := newTestCore(t, &fakeDriver{}, &fakeSearcher{})
	proc := process.NewIngestProcess(ct)

	logic := NewIngestLogic(context.Background(), ct, proc)
	_, err := logic.Status("web-unknown")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}
