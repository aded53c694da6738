package process

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/chunker"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/safe"
	"github.com/opencurrent/opencurrent/pkg/types"
)

// Task is one pending ingestion: fetch the url, chunk it and fill the
// session's collection.
type Task struct {
	SessionID string
	URL       string
}

type statusEntry struct {
	State     types.IngestStatus
	Reason    string
	UpdatedAt time.Time
}

var ErrQueueFull = errors.New("process.Enqueue", "ingest queue is full", nil)

// IngestProcess owns the background ingestion pipeline. It keeps an
// in-flight claim set so the same session is never ingested twice
// concurrently, and an explicit status registry so callers never have to
// infer progress from chunk counts alone.
type IngestProcess struct {
	core *core.Core

	tasks chan Task
	stop  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	claims map[string]struct{}
	status map[string]statusEntry

	cron *cron.Cron

	// afterTask is a completion hook, nil outside tests.
	afterTask func(task Task, err error)
}

func NewIngestProcess(core *core.Core) *IngestProcess {
	return &IngestProcess{
		core:   core,
		tasks:  make(chan Task, core.Cfg().Ingest.QueueSize),
		stop:   make(chan struct{}),
		claims: make(map[string]struct{}),
		status: make(map[string]statusEntry),
		cron:   cron.New(),
	}
}

// Start launches the worker pool and the scratch-collection sweeper.
func (p *IngestProcess) Start() {
	for i := 0; i < p.core.Cfg().Ingest.Workers; i++ {
		p.wg.Add(1)
		go safe.Run(func() {
			defer p.wg.Done()
			p.work()
		})
	}

	if _, err := p.cron.AddFunc("@every 10m", func() {
		safe.Run(func() {
			p.SweepScratch(context.Background())
		})
	}); err != nil {
		slog.Error("Failed to register scratch sweeper", slog.String("error", err.Error()))
	}
	p.cron.Start()
}

func (p *IngestProcess) Stop() {
	close(p.stop)
	p.cron.Stop()
	p.wg.Wait()
}

// Enqueue claims the session and schedules its ingestion. A session that
// is already claimed is reported as accepted without scheduling a second
// task, so double-submits collapse into one ingestion.
func (p *IngestProcess) Enqueue(task Task) (bool, error) {
	p.mu.Lock()
	if _, inflight := p.claims[task.SessionID]; inflight {
		p.mu.Unlock()
		return false, nil
	}
	p.claims[task.SessionID] = struct{}{}
	p.status[task.SessionID] = statusEntry{State: types.IngestStatusPending, UpdatedAt: time.Now()}
	p.mu.Unlock()

	select {
	case p.tasks <- task:
		return true, nil
	default:
		p.release(task.SessionID)
		p.setStatus(task.SessionID, types.IngestStatusError, "queue full")
		return false, ErrQueueFull
	}
}

// Status reports the session's ingest state. Sessions unknown to the
// registry (for example after a restart) fall back to the chunk count:
// a populated collection is ready, an existing empty one is pending.
func (p *IngestProcess) Status(ctx context.Context, sessionID string) (types.IngestStatus, string, error) {
	p.mu.Lock()
	entry, ok := p.status[sessionID]
	p.mu.Unlock()
	if ok {
		return entry.State, entry.Reason, nil
	}

	if _, err := p.core.Collections().Get(ctx, sessionID); err != nil {
		if err == store.ErrNotFound {
			return "", "", store.ErrNotFound
		}
		return "", "", errors.Trace("IngestProcess.Status", err)
	}

	count, err := p.core.Collections().Count(ctx, sessionID)
	if err != nil {
		return "", "", errors.Trace("IngestProcess.Status", err)
	}
	if count > 0 {
		return types.IngestStatusReady, "", nil
	}
	return types.IngestStatusPending, "", nil
}

func (p *IngestProcess) work() {
	for {
		select {
		case <-p.stop:
			return
		case task := <-p.tasks:
			err := p.runTask(task)
			if err != nil {
				slog.Error("Ingest task failed",
					slog.String("session_id", task.SessionID),
					slog.String("url", task.URL),
					slog.String("error", err.Error()))
				p.core.Metrics().IngestTaskInc("error")
			} else {
				p.core.Metrics().IngestTaskInc("ready")
			}
			p.complete(task, err)
			if p.afterTask != nil {
				p.afterTask(task, err)
			}
		}
	}
}

func (p *IngestProcess) runTask(task Task) error {
	timeout := time.Duration(p.core.Cfg().Ingest.TaskTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := p.core.Srv().AI().Reader(ctx, task.URL)
	if err != nil {
		return errors.Trace("IngestProcess.runTask.Reader", err)
	}
	if strings.TrimSpace(result.Content) == "" {
		return errors.New("IngestProcess.runTask", "fetched page has no content", nil)
	}

	pieces := chunker.Chunk(result.Content, chunker.DefaultMaxLen)
	if len(pieces) == 0 {
		return errors.New("IngestProcess.runTask", "no chunks produced from page content", nil)
	}

	if _, err = p.core.Collections().GetOrCreate(ctx, task.SessionID); err != nil {
		return errors.Trace("IngestProcess.runTask.GetOrCreate", err)
	}

	chunks := make([]types.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, types.Chunk{
			ID:        fmt.Sprintf("%s-%d", task.SessionID, i),
			Content:   piece,
			SourceURL: task.URL,
			Sequence:  i,
		})
	}

	if err = p.core.Collections().AddChunks(ctx, task.SessionID, chunks); err != nil {
		return errors.Trace("IngestProcess.runTask.AddChunks", err)
	}

	slog.Info("Ingest task finished",
		slog.String("session_id", task.SessionID),
		slog.String("url", task.URL),
		slog.Int("chunks", len(chunks)))
	return nil
}

// SweepScratch deletes scratch collections older than the configured TTL.
// These only exist when a summarization request died before its deferred
// cleanup ran.
func (p *IngestProcess) SweepScratch(ctx context.Context) {
	ttl := time.Duration(p.core.Cfg().Ingest.ScratchTTLMinutes) * time.Minute
	leaked, err := p.core.Collections().ListScratchBefore(ctx, time.Now().Add(-ttl))
	if err != nil {
		slog.Error("Failed to list scratch collections", slog.String("error", err.Error()))
		return
	}

	for _, name := range leaked {
		if err = p.core.Collections().Delete(ctx, name); err != nil {
			slog.Error("Failed to delete scratch collection", slog.String("collection", name), slog.String("error", err.Error()))
			continue
		}
		slog.Info("Deleted leaked scratch collection", slog.String("collection", name))
	}
}

func (p *IngestProcess) release(sessionID string) {
	p.mu.Lock()
	delete(p.claims, sessionID)
	p.mu.Unlock()
}

// complete records the terminal status and releases the claim in one
// critical section. Releasing first would let a re-enqueued session's
// fresh pending entry be overwritten by this task's stale result.
func (p *IngestProcess) complete(task Task, err error) {
	entry := statusEntry{State: types.IngestStatusReady, UpdatedAt: time.Now()}
	if err != nil {
		entry = statusEntry{State: types.IngestStatusError, Reason: err.Error(), UpdatedAt: time.Now()}
	}
	p.mu.Lock()
	p.status[task.SessionID] = entry
	delete(p.claims, task.SessionID)
	p.mu.Unlock()
}

func (p *IngestProcess) setStatus(sessionID string, state types.IngestStatus, reason string) {
	p.mu.Lock()
	p.status[sessionID] = statusEntry{State: state, Reason: reason, UpdatedAt: time.Now()}
	p.mu.Unlock()
}
