package v1

import (
	"context"
	"net/http"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/logic/v1/process"
	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/session"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type IngestLogic struct {
	ctx     context.Context
	core    *core.Core
	process *process.IngestProcess
}

func NewIngestLogic(ctx context.Context, core *core.Core, proc *process.IngestProcess) *IngestLogic {
	return &IngestLogic{
		ctx:     ctx,
		core:    core,
		process: proc,
	}
}

// IngestReceipt is the immediate answer to an ingestion request. The
// actual work continues in the background.
type IngestReceipt struct {
	SessionID string             `json:"session_id"`
	Status    types.IngestStatus `json:"status"`
	Already   bool               `json:"already_ingested"`
}

// StartIngest derives the session from the url and schedules a background
// ingestion. Re-submitting an already populated url returns its session
// without doing any work again.
func (l *IngestLogic) StartIngest(url string) (IngestReceipt, error) {
	sessionID := session.Derive(url)

	_, err := l.core.Collections().Get(l.ctx, sessionID)
	if err != nil && err != store.ErrNotFound {
		return IngestReceipt{}, errors.New("IngestLogic.StartIngest.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == nil {
		count, err := l.core.Collections().Count(l.ctx, sessionID)
		if err != nil {
			return IngestReceipt{}, errors.New("IngestLogic.StartIngest.Count", i18n.ERROR_INTERNAL, err)
		}
		if count > 0 {
			return IngestReceipt{SessionID: sessionID, Status: types.IngestStatusReady, Already: true}, nil
		}
	}

	accepted, err := l.process.Enqueue(process.Task{SessionID: sessionID, URL: url})
	if err != nil {
		return IngestReceipt{}, errors.New("IngestLogic.StartIngest.Enqueue", i18n.ERROR_TOO_MANY_REQUESTS, err).Code(http.StatusTooManyRequests)
	}

	if accepted {
		if err = l.core.History().RecordChat(l.ctx, url, sessionID); err != nil {
			return IngestReceipt{}, errors.New("IngestLogic.StartIngest.RecordChat", i18n.ERROR_INTERNAL, err)
		}
	}

	return IngestReceipt{SessionID: sessionID, Status: types.IngestStatusPending}, nil
}

// IngestStatusResult reports where a session's ingestion stands.
type IngestStatusResult struct {
	SessionID string             `json:"session_id"`
	Status    types.IngestStatus `json:"status"`
	Chunks    int64              `json:"chunks"`
	Reason    string             `json:"reason,omitempty"`
}

func (l *IngestLogic) Status(sessionID string) (IngestStatusResult, error) {
	state, reason, err := l.process.Status(l.ctx, sessionID)
	if err != nil {
		if err == store.ErrNotFound {
			return IngestStatusResult{}, errors.New("IngestLogic.Status", i18n.ERROR_SESSION_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return IngestStatusResult{}, errors.New("IngestLogic.Status", i18n.ERROR_INTERNAL, err)
	}

	count, err := l.core.Collections().Count(l.ctx, sessionID)
	if err != nil {
		return IngestStatusResult{}, errors.New("IngestLogic.Status.Count", i18n.ERROR_INTERNAL, err)
	}

	return IngestStatusResult{SessionID: sessionID, Status: state, Chunks: count, Reason: reason}, nil
}
