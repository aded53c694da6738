package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/core/srv"
	"github.com/opencurrent/opencurrent/app/logic/v1/process"
	"github.com/opencurrent/opencurrent/app/store/vectorstore"
	"github.com/opencurrent/opencurrent/cmd/service/handler"
	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type fakeDriver struct{}

func (f *fakeDriver) embed(content []string) ai.EmbeddingResult {
	data := make([][]float32, 0, len(content))
	for range content {
		data = append(data, []float32{1, 0, 0, 0})
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
	return ai.GenerateResponse{Received: []string{"an answer"}}, nil
}

func (f *fakeDriver) Extract(ctx context.Context, content string) (*ai.SummaryEntity, error) {
	return &ai.SummaryEntity{SubjectName: "subject", Summary: "a summary"}, nil
}

func (f *fakeDriver) Reader(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
	return &ai.ReaderResult{
		Title:   "Page",
		URL:     endpoint,
		Content: "# Section\n\nSome content about the page.",
	}, nil
}

func (f *fakeDriver) PromptIsOverLimit(prompt string) bool { return false }

type fakeSearcher struct{}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	return []types.SearchResult{{Title: "r", Link: "https://example.com", Snippet: "s"}}, nil
}

func newTestServer(t *testing.T) (*handler.HttpSrv, *process.IngestProcess) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	driver := &fakeDriver{}
	cfg := core.CoreConfig{
		Vector: core.VectorConfig{Driver: core.VectorDriverMemory},
		Data:   core.DataConfig{Dir: t.TempDir()},
		Ingest: core.IngestConfig{
			Workers:            1,
			QueueSize:          4,
			TaskTimeoutSeconds: 5,
			ScratchTTLMinutes:  60,
		},
		Request: core.RequestConfig{TimeoutSeconds: 5},
	}
	ct := core.MustSetupCore(cfg)
	ct.SetSrv(srv.SetupSrvs(srv.ApplyAIDriver(driver), srv.ApplySearcher(&fakeSearcher{})))
	ct.SetCollections(vectorstore.NewMemoryCollectionStore(driver))

	proc := process.NewIngestProcess(ct)
	s := &handler.HttpSrv{Core: ct, Engine: ct.HttpEngine(), Process: proc}
	setupHttpRouter(s)
	return s, proc
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Meta struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestIngestValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/ingest", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusBadRequest, e.Meta.Code)
	assert.NotEmpty(t, e.Meta.RequestID)
}

func TestIngestAccepted(t *testing.T) {
	s, proc := newTestServer(t)
	proc.Start()
	defer proc.Stop()

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/ingest", `{"url":"https://example.com/page"}`)
	require.Equal(t, http.StatusOK, w.Code)

	e := decodeEnvelope(t, w)
	var data struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.True(t, strings.HasPrefix(data.SessionID, "web-"))
	assert.Equal(t, string(types.IngestStatusPending), data.Status)
	assert.NotEmpty(t, data.Message)
}

func TestChatUnknownSession(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/chat", `{"session_id":"web-missing","question":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	e := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, e.Meta.Code)
	assert.NotEmpty(t, e.Meta.Message)
}

func TestSummarizeEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/summarize", `{"url":"https://example.com/article"}`)
	require.Equal(t, http.StatusOK, w.Code)

	e := decodeEnvelope(t, w)
	var entity ai.SummaryEntity
	require.NoError(t, json.Unmarshal(e.Data, &entity))
	assert.Equal(t, "a summary", entity.Summary)
	assert.Equal(t, "https://example.com/article", entity.Link)
}

func TestKnowledgeRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"title":"Post","link":"https://example.com/post","summary":"s"}`
	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/knowledge", body)
	require.Equal(t, http.StatusOK, w.Code)

	e := decodeEnvelope(t, w)
	var saved types.KnowledgeEntry
	require.NoError(t, json.Unmarshal(e.Data, &saved))
	require.NotEmpty(t, saved.ID)

	// saving the same link again conflicts
	w = doJSON(t, s.Engine, http.MethodPost, "/api/v1/knowledge", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s.Engine, http.MethodGet, "/api/v1/knowledge/list", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Engine, http.MethodDelete, "/api/v1/knowledge/"+saved.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Engine, http.MethodDelete, "/api/v1/knowledge/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAndHistoryRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/search", `{"query":"golang"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Engine, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	e := decodeEnvelope(t, w)
	var doc types.HistoryDocument
	require.NoError(t, json.Unmarshal(e.Data, &doc))
	require.Len(t, doc.Searches, 1)
	assert.Equal(t, "golang", doc.Searches[0].Query)
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "opencurrent_core")
}

func TestFailedRequestsCountedInMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Engine, http.MethodPost, "/api/v1/chat", `{"session_id":"web-missing","question":"hi"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s.Engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(),
		`opencurrent_core_api_error{api="/api/v1/chat",method="POST",status="404"}`)
}
