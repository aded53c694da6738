package v1

import (
	"context"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type HistoryLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewHistoryLogic(ctx context.Context, core *core.Core) *HistoryLogic {
	return &HistoryLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *HistoryLogic) List() (types.HistoryDocument, error) {
	doc, err := l.core.History().List(l.ctx)
	if err != nil {
		return types.HistoryDocument{}, errors.New("HistoryLogic.List", i18n.ERROR_INTERNAL, err)
	}
	return doc, nil
}
