package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/chunker"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
)

const summaryRetrievalLimit = 7

type SummaryLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewSummaryLogic(ctx context.Context, core *core.Core) *SummaryLogic {
	return &SummaryLogic{
		ctx:  ctx,
		core: core,
	}
}

// Summarize fetches the url, stages its chunks in a throwaway scratch
// collection, retrieves the densest passages and extracts a structured
// summary from them. The scratch collection is deleted on every exit
// path, success or failure.
func (l *SummaryLogic) Summarize(url string) (*ai.SummaryEntity, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.core.Cfg().Request.Timeout())
	defer cancel()

	result, err := l.core.Srv().AI().Reader(ctx, url)
	if err != nil {
		return nil, errors.New("SummaryLogic.Summarize.Reader", i18n.ERROR_FETCH_FAILED, err).Code(http.StatusUnprocessableEntity)
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, errors.New("SummaryLogic.Summarize", i18n.ERROR_CONTENT_EMPTY, nil).Code(http.StatusUnprocessableEntity)
	}

	pieces := chunker.Chunk(result.Content, chunker.DefaultMaxLen)
	if len(pieces) == 0 {
		return nil, errors.New("SummaryLogic.Summarize.Chunk", i18n.ERROR_CONTENT_EMPTY, nil).Code(http.StatusUnprocessableEntity)
	}

	scratch := types.ScratchCollectionPrefix + uuid.NewString()
	if _, err = l.core.Collections().GetOrCreate(ctx, scratch); err != nil {
		return nil, errors.New("SummaryLogic.Summarize.GetOrCreate", i18n.ERROR_INTERNAL, err)
	}
	defer func() {
		// Cleanup must survive request cancellation, otherwise the
		// scratch collection leaks until the sweeper finds it.
		cleanupCtx := context.WithoutCancel(ctx)
		if derr := l.core.Collections().Delete(cleanupCtx, scratch); derr != nil {
			slog.Error("Failed to delete scratch collection", slog.String("collection", scratch), slog.String("error", derr.Error()))
		}
	}()

	chunks := lo.Map(pieces, func(piece string, i int) types.Chunk {
		return types.Chunk{
			ID:        scratch + "-" + uuid.NewString(),
			Content:   piece,
			SourceURL: url,
			Sequence:  i,
		}
	})
	if err = l.core.Collections().AddChunks(ctx, scratch, chunks); err != nil {
		return nil, errors.New("SummaryLogic.Summarize.AddChunks", i18n.ERROR_INTERNAL, err)
	}

	timer := l.core.Metrics().RetrievalTimer("summary")
	relevant, err := l.core.Collections().Query(ctx, scratch, ai.PROMPT_SUMMARY_QUERY_EN, summaryRetrievalLimit)
	timer.ObserveDuration()
	if err != nil {
		return nil, errors.New("SummaryLogic.Summarize.Query", i18n.ERROR_INTERNAL, err)
	}
	if len(relevant) == 0 {
		return nil, errors.New("SummaryLogic.Summarize", i18n.ERROR_CONTENT_EMPTY, nil).Code(http.StatusUnprocessableEntity)
	}

	contextBlock := strings.Join(lo.Map(relevant, func(item types.Chunk, _ int) string {
		return item.Content
	}), ai.ContextSeparator)

	genTimer := l.core.Metrics().ModelRequestTimer("extract")
	entity, err := l.core.Srv().AI().Extract(ctx, contextBlock)
	genTimer.ObserveDuration()
	if err != nil {
		return nil, errors.New("SummaryLogic.Summarize.Extract", i18n.ERROR_EXTRACTION_FAILED, err).Code(http.StatusUnprocessableEntity)
	}

	if entity.Title == "" {
		entity.Title = result.Title
	}
	entity.Link = url

	return entity, nil
}
