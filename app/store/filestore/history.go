// Package filestore persists history and knowledge-base documents as
// whole JSON files, each rewritten under its own lock on every mutation.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencurrent/opencurrent/pkg/types"
)

const historyFileName = "history.json"

type HistoryStore struct {
	mu   sync.Mutex
	path string
}

func NewHistoryStore(dir string) *HistoryStore {
	return &HistoryStore{path: filepath.Join(dir, historyFileName)}
}

func (s *HistoryStore) load() (types.HistoryDocument, error) {
	var doc types.HistoryDocument
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, err
	}
	if err = json.Unmarshal(raw, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *HistoryStore) save(doc types.HistoryDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// prepend deduplicates by key, puts the newest record first and bounds the
// list to types.HistoryLimit entries.
func prepend(list []types.HistoryRecord, record types.HistoryRecord) []types.HistoryRecord {
	out := []types.HistoryRecord{record}
	for _, r := range list {
		if r.Key == record.Key {
			continue
		}
		out = append(out, r)
	}
	if len(out) > types.HistoryLimit {
		out = out[:types.HistoryLimit]
	}
	return out
}

func (s *HistoryStore) RecordSearch(ctx context.Context, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Searches = prepend(doc.Searches, types.HistoryRecord{
		Key:       query,
		Query:     query,
		Timestamp: time.Now().UTC(),
	})
	return s.save(doc)
}

func (s *HistoryStore) RecordChat(ctx context.Context, url, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Chats = prepend(doc.Chats, types.HistoryRecord{
		Key:       sessionID,
		URL:       url,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
	return s.save(doc)
}

func (s *HistoryStore) List(ctx context.Context) (types.HistoryDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
