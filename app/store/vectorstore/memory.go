package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/types"
)

// MemoryCollectionStore is a process-local CollectionStore with brute-force
// cosine ranking. It backs tests and single-node deployments that do not
// want a Postgres dependency.
type MemoryCollectionStore struct {
	mu       sync.RWMutex
	embedder store.Embedder

	collections map[string]*memoryCollection
}

type memoryCollection struct {
	meta   types.Collection
	ids    map[string]struct{}
	chunks []memoryChunk
}

type memoryChunk struct {
	chunk     types.Chunk
	embedding []float32
}

func NewMemoryCollectionStore(embedder store.Embedder) *MemoryCollectionStore {
	return &MemoryCollectionStore{
		embedder:    embedder,
		collections: make(map[string]*memoryCollection),
	}
}

func (s *MemoryCollectionStore) GetOrCreate(ctx context.Context, name string) (*types.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		meta := c.meta
		return &meta, nil
	}
	c := &memoryCollection{
		meta: types.Collection{Name: name, CreatedAt: time.Now().Unix()},
		ids:  make(map[string]struct{}),
	}
	s.collections[name] = c
	meta := c.meta
	return &meta, nil
}

func (s *MemoryCollectionStore) Get(ctx context.Context, name string) (*types.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	meta := c.meta
	return &meta, nil
}

func (s *MemoryCollectionStore) AddChunks(ctx context.Context, name string, chunks []types.Chunk) error {
	for _, batch := range lo.Chunk(chunks, types.ChunkBatchSize) {
		embeddings, err := s.embedder.EmbeddingForDocument(ctx, lo.Map(batch, func(item types.Chunk, _ int) string {
			return item.Content
		}))
		if err != nil {
			return err
		}
		if len(embeddings.Data) != len(batch) {
			return errors.New("embedding capability returned a mismatched vector count")
		}

		s.mu.Lock()
		c, ok := s.collections[name]
		if !ok {
			s.mu.Unlock()
			return store.ErrNotFound
		}
		for i, chunk := range batch {
			// duplicate ids are dropped, mirroring upsert semantics
			if _, exists := c.ids[chunk.ID]; exists {
				continue
			}
			c.ids[chunk.ID] = struct{}{}
			c.chunks = append(c.chunks, memoryChunk{chunk: chunk, embedding: embeddings.Data[i]})
		}
		s.mu.Unlock()
	}
	return nil
}

func (s *MemoryCollectionStore) Query(ctx context.Context, name string, question string, k int) ([]types.Chunk, error) {
	if _, err := s.Get(ctx, name); err != nil {
		return nil, err
	}

	embeddings, err := s.embedder.EmbeddingForQuery(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(embeddings.Data) == 0 {
		return nil, errors.New("embedding capability returned no vector for the query")
	}
	qv := embeddings.Data[0]

	s.mu.RLock()
	c, ok := s.collections[name]
	if !ok {
		// A concurrent Delete may have raced the existence check above.
		s.mu.RUnlock()
		return nil, store.ErrNotFound
	}
	scored := make([]struct {
		chunk types.Chunk
		score float64
	}, 0, len(c.chunks))
	for _, mc := range c.chunks {
		scored = append(scored, struct {
			chunk types.Chunk
			score float64
		}{chunk: mc.chunk, score: cosine(qv, mc.embedding)})
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}

	result := make([]types.Chunk, 0, len(scored))
	for _, sc := range scored {
		result = append(result, sc.chunk)
	}
	return result, nil
}

func (s *MemoryCollectionStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *MemoryCollectionStore) Count(ctx context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	return int64(len(c.chunks)), nil
}

func (s *MemoryCollectionStore) ListScratchBefore(ctx context.Context, t time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name, c := range s.collections {
		if strings.HasPrefix(name, types.ScratchCollectionPrefix) && c.meta.CreatedAt < t.Unix() {
			names = append(names, name)
		}
	}
	return names, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
