package v1

import (
	"context"
	"net/http"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type KnowledgeLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewKnowledgeLogic(ctx context.Context, core *core.Core) *KnowledgeLogic {
	return &KnowledgeLogic{
		ctx:  ctx,
		core: core,
	}
}

// Save stores a summary in the knowledge base. Saving the same link twice
// is a conflict, not an update.
func (l *KnowledgeLogic) Save(entry types.KnowledgeEntry) (*types.KnowledgeEntry, error) {
	saved, err := l.core.Knowledge().Save(l.ctx, entry)
	if err != nil {
		if err == store.ErrConflict {
			return nil, errors.New("KnowledgeLogic.Save", i18n.ERROR_ALREADY_SAVED, err).Code(http.StatusConflict)
		}
		return nil, errors.New("KnowledgeLogic.Save", i18n.ERROR_INTERNAL, err)
	}
	return saved, nil
}

func (l *KnowledgeLogic) Delete(id string) error {
	if err := l.core.Knowledge().Delete(l.ctx, id); err != nil {
		if err == store.ErrNotFound {
			return errors.New("KnowledgeLogic.Delete", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("KnowledgeLogic.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *KnowledgeLogic) List() ([]types.KnowledgeEntry, error) {
	entries, err := l.core.Knowledge().List(l.ctx)
	if err != nil {
		return nil, errors.New("KnowledgeLogic.List", i18n.ERROR_INTERNAL, err)
	}
	return entries, nil
}
