package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/types"
)

const knowledgeFileName = "knowledge_base.json"

type KnowledgeStore struct {
	mu   sync.Mutex
	path string
}

func NewKnowledgeStore(dir string) *KnowledgeStore {
	return &KnowledgeStore{path: filepath.Join(dir, knowledgeFileName)}
}

func (s *KnowledgeStore) load() ([]types.KnowledgeEntry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []types.KnowledgeEntry
	if err = json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *KnowledgeStore) save(entries []types.KnowledgeEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

func (s *KnowledgeStore) Save(ctx context.Context, entry types.KnowledgeEntry) (*types.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Link == entry.Link {
			return nil, store.ErrConflict
		}
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now().UTC()
	}

	// newest first
	entries = append([]types.KnowledgeEntry{entry}, entries...)
	if err = s.save(entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *KnowledgeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.save(kept)
}

func (s *KnowledgeStore) List(ctx context.Context) ([]types.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
