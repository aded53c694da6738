package types

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ChunkBatchSize bounds how many chunks a single store call may carry,
// to keep embedding/index request payloads small.
const ChunkBatchSize = 100

// Chunk is the unit of storage and retrieval: a bounded span of document
// text, ordered by its position in the source document.
type Chunk struct {
	ID        string `json:"id" db:"id"`
	Content   string `json:"content" db:"content"`
	SourceURL string `json:"source_url" db:"source_url"`
	Sequence  int    `json:"sequence" db:"sequence"`
}

// Collection is a named bag of chunks plus their embeddings. Durable
// collections are named by a session identifier derived from a URL,
// scratch collections by a random one-shot name.
type Collection struct {
	Name      string `json:"name" db:"name"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// ScratchCollectionPrefix marks one-shot collections that must never be
// reachable through a session identifier and are swept if leaked.
const ScratchCollectionPrefix = "scratch-"

// ChunkRecord is the stored form of a chunk, embedding included.
type ChunkRecord struct {
	ID         string          `db:"id"`
	Collection string          `db:"collection_name"`
	Content    string          `db:"content"`
	SourceURL  string          `db:"source_url"`
	Sequence   int             `db:"sequence"`
	Embedding  pgvector.Vector `db:"embedding"`
	CreatedAt  int64           `db:"created_at"`
}

// IngestStatus is the explicit ingestion state written by the orchestrator.
type IngestStatus string

const (
	IngestStatusPending IngestStatus = "pending"
	IngestStatusReady   IngestStatus = "ready"
	IngestStatusError   IngestStatus = "error"
)

// HistoryRecord is one remembered search query or chat ingestion.
type HistoryRecord struct {
	Key       string    `json:"key"`
	Query     string    `json:"query,omitempty"`
	URL       string    `json:"url,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryDocument is the whole persisted history file.
type HistoryDocument struct {
	Searches []HistoryRecord `json:"searches"`
	Chats    []HistoryRecord `json:"chats"`
}

// HistoryLimit caps each history list to the most recent entries.
const HistoryLimit = 50

// KnowledgeEntry is a summary the user explicitly saved, unique by link.
type KnowledgeEntry struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Link              string    `json:"link"`
	Summary           string    `json:"summary"`
	SubjectName       string    `json:"subject_name,omitempty"`
	PublicationDate   string    `json:"publication_date,omitempty"`
	Location          string    `json:"location,omitempty"`
	ContactEmails     []string  `json:"contact_emails,omitempty"`
	Organizations     []string  `json:"organizations,omitempty"`
	FinancialMentions []string  `json:"financial_mentions,omitempty"`
	Projects          []string  `json:"projects,omitempty"`
	Locations         []string  `json:"locations,omitempty"`
	SavedAt           time.Time `json:"saved_at"`
}

// SearchResult is one normalized web-search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
