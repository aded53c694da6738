package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"

	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/register"
	"github.com/opencurrent/opencurrent/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.CollectionStore = NewCollectionStore(provider)
	})
}

// CollectionStore keeps chunk collections in Postgres with pgvector
// embeddings. Similarity ranking is cosine.
type CollectionStore struct {
	CommonFields
	chunks ChunkFields
}

type ChunkFields struct {
	CommonFields
}

func NewCollectionStore(provider SqlProviderAchieve) *CollectionStore {
	repo := &CollectionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_COLLECTIONS)
	repo.SetAllColumns("name", "created_at")

	repo.chunks.SetProvider(provider)
	repo.chunks.SetTable(types.TABLE_CHUNKS)
	repo.chunks.SetAllColumns("id", "collection_name", "content", "source_url", "sequence", "embedding", "created_at")
	return repo
}

func (s *CollectionStore) GetOrCreate(ctx context.Context, name string) (*types.Collection, error) {
	query := sq.Insert(s.GetTable()).
		Columns("name", "created_at").
		Values(name, time.Now().Unix()).
		Suffix("ON CONFLICT (name) DO NOTHING")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return nil, err
	}

	return s.Get(ctx, name)
}

func (s *CollectionStore) Get(ctx context.Context, name string) (*types.Collection, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"name": name})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Collection
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// AddChunks embeds and inserts chunks in sequence order, at most
// types.ChunkBatchSize rows per statement. Batch i completes before batch
// i+1 begins so count() grows monotonically with document order. Duplicate
// ids are ignored, which makes concurrent re-ingestion harmless.
func (s *CollectionStore) AddChunks(ctx context.Context, name string, chunks []types.Chunk) error {
	for _, batch := range lo.Chunk(chunks, types.ChunkBatchSize) {
		embeddings, err := s.provider.Embedder().EmbeddingForDocument(ctx, lo.Map(batch, func(item types.Chunk, _ int) string {
			return item.Content
		}))
		if err != nil {
			return err
		}
		if len(embeddings.Data) != len(batch) {
			return errors.New("embedding capability returned a mismatched vector count")
		}

		query := sq.Insert(s.chunks.GetTable()).
			Columns(s.chunks.GetAllColumns()...)
		now := time.Now().Unix()
		for i, chunk := range batch {
			query = query.Values(chunk.ID, name, chunk.Content, chunk.SourceURL, chunk.Sequence, pgvector.NewVector(embeddings.Data[i]), now)
		}
		query = query.Suffix("ON CONFLICT (collection_name, id) DO NOTHING")

		queryString, args, err := query.ToSql()
		if err != nil {
			return ErrorSqlBuild(err)
		}

		if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
			return err
		}
	}
	return nil
}

type queryResult struct {
	ID        string  `db:"id"`
	Content   string  `db:"content"`
	SourceURL string  `db:"source_url"`
	Sequence  int     `db:"sequence"`
	Cos       float64 `db:"cos"`
}

func (s *CollectionStore) Query(ctx context.Context, name string, question string, k int) ([]types.Chunk, error) {
	if _, err := s.Get(ctx, name); err != nil {
		return nil, err
	}

	embeddings, err := s.provider.Embedder().EmbeddingForQuery(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(embeddings.Data) == 0 {
		return nil, errors.New("embedding capability returned no vector for the query")
	}

	// pgvector supported distance functions are:
	// <-> - L2 distance
	// <#> - (negative) inner product
	// <=> - cosine distance
	cosColumn, vectorArgs, _ := sq.Expr("1 - (embedding <=> ?) as cos", pgvector.NewVector(embeddings.Data[0])).ToSql()
	query := sq.Select("id", "content", "source_url", "sequence", cosColumn).
		From(s.chunks.GetTable()).
		Where(sq.Eq{"collection_name": name}).
		OrderBy("cos DESC").
		Limit(uint64(k))

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}
	args = append(vectorArgs, args...)

	var res []queryResult
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}

	return lo.Map(res, func(item queryResult, _ int) types.Chunk {
		return types.Chunk{
			ID:        item.ID,
			Content:   item.Content,
			SourceURL: item.SourceURL,
			Sequence:  item.Sequence,
		}
	}), nil
}

func (s *CollectionStore) Delete(ctx context.Context, name string) error {
	query := sq.Delete(s.chunks.GetTable()).Where(sq.Eq{"collection_name": name})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}
	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}

	query = sq.Delete(s.GetTable()).Where(sq.Eq{"name": name})
	queryString, args, err = query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}
	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *CollectionStore) Count(ctx context.Context, name string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.chunks.GetTable()).Where(sq.Eq{"collection_name": name})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *CollectionStore) ListScratchBefore(ctx context.Context, t time.Time) ([]string, error) {
	query := sq.Select("name").From(s.GetTable()).
		Where(sq.Like{"name": types.ScratchCollectionPrefix + "%"}).
		Where(sq.Lt{"created_at": t.Unix()})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var names []string
	if err = s.GetReplica(ctx).Select(&names, queryString, args...); err != nil {
		return nil, err
	}
	return names, nil
}
