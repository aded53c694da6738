package v1

import (
	"context"
	"net/http"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type SearchLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewSearchLogic(ctx context.Context, core *core.Core) *SearchLogic {
	return &SearchLogic{
		ctx:  ctx,
		core: core,
	}
}

// Search runs a web search and records the query in the history file.
func (l *SearchLogic) Search(query string) ([]types.SearchResult, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.core.Cfg().Request.Timeout())
	defer cancel()

	results, err := l.core.Srv().Search().Search(ctx, query)
	if err != nil {
		return nil, errors.New("SearchLogic.Search", i18n.ERROR_SEARCH_FAILED, err).Code(http.StatusBadGateway)
	}

	if err = l.core.History().RecordSearch(ctx, query); err != nil {
		return nil, errors.New("SearchLogic.Search.RecordSearch", i18n.ERROR_INTERNAL, err)
	}

	return results, nil
}
