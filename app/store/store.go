package store

import (
	"context"
	"errors"
	"time"

	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/types"
)

var (
	// ErrNotFound signals a missing collection or entry. For collections it
	// is how callers distinguish "never ingested" from "exists".
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a duplicate knowledge-base link.
	ErrConflict = errors.New("already exists")
)

// Embedder is the slice of the AI capability the vector store needs.
type Embedder interface {
	EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error)
	EmbeddingForDocument(ctx context.Context, content []string) (ai.EmbeddingResult, error)
}

// CollectionStore owns the lifecycle of named chunk collections and wraps
// the embedding + similarity-search capability.
type CollectionStore interface {
	// GetOrCreate never errors on an existing collection.
	GetOrCreate(ctx context.Context, name string) (*types.Collection, error)
	// Get returns ErrNotFound when the collection does not exist.
	Get(ctx context.Context, name string) (*types.Collection, error)
	// AddChunks embeds and appends chunks in batches of at most
	// types.ChunkBatchSize, in sequence order, never splitting a chunk.
	AddChunks(ctx context.Context, name string, chunks []types.Chunk) error
	// Query returns up to k chunks ranked most-relevant first.
	Query(ctx context.Context, name string, question string, k int) ([]types.Chunk, error)
	// Delete is idempotent; deleting a missing collection is not an error.
	Delete(ctx context.Context, name string) error
	// Count reports stored chunks; zero reads as "still pending".
	Count(ctx context.Context, name string) (int64, error)
	// ListScratchBefore lists leaked scratch collections older than t.
	ListScratchBefore(ctx context.Context, t time.Time) ([]string, error)
}

// HistoryStore persists recent searches and chat ingestions, deduplicated
// and bounded to the most recent types.HistoryLimit entries per list.
type HistoryStore interface {
	RecordSearch(ctx context.Context, query string) error
	RecordChat(ctx context.Context, url, sessionID string) error
	List(ctx context.Context) (types.HistoryDocument, error)
}

// KnowledgeStore persists saved summaries, unique by link.
type KnowledgeStore interface {
	// Save returns ErrConflict when the link is already saved.
	Save(ctx context.Context, entry types.KnowledgeEntry) (*types.KnowledgeEntry, error)
	// Delete returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
	// List returns entries newest-first.
	List(ctx context.Context) ([]types.KnowledgeEntry, error)
}
