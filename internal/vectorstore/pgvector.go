package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/models"
)

// schema is executed once at startup. One table holds all three
// collections; the teacher's single-tenant document_chunks table gains a
// collection column instead of spawning three near-identical tables.
const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
	chunk_id   TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	document   TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  vector,
	metadata   JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS chunks_collection_idx ON chunks (collection);
CREATE INDEX IF NOT EXISTS chunks_document_idx ON chunks (document);
`

// PGStore is the Postgres+pgvector-backed VectorStore. Grounded on the
// teacher's internal/vectorstore/pgvector.go connection pooling and query
// style (pgx/v5, no ORM, hand-written SQL).
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vectorstore: migrate: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() { s.pool.Close() }

func (s *PGStore) Upsert(ctx context.Context, collection models.Collection, items []UpsertItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		meta, err := json.Marshal(item.Metadata)
		if err != nil {
			return apperror.New(apperror.ErrInternal, apperror.StageUpsert, fmt.Errorf("marshal metadata: %w", err))
		}
		batch.Queue(
			`INSERT INTO chunks (chunk_id, collection, document, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (chunk_id) DO UPDATE SET
			   content = EXCLUDED.content, embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`,
			string(item.ChunkID), string(collection), item.Document, item.Content, pgvector.NewVector(item.Vector), meta,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return apperror.New(apperror.ErrInternal, apperror.StageUpsert, fmt.Errorf("upsert: %w", err))
		}
	}
	return nil
}

func (s *PGStore) Query(ctx context.Context, collection models.Collection, vector []float32, k int, where Where) ([]Hit, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{string(collection)}
	args = appendWhere(&clauses, args, where)

	args = append(args, pgvector.NewVector(vector))
	embArg := len(args)
	args = append(args, k)
	kArg := len(args)

	query := fmt.Sprintf(
		`SELECT chunk_id, document, content, metadata, embedding <=> $%d AS distance
		 FROM chunks WHERE %s ORDER BY distance ASC LIMIT $%d`,
		embArg, strings.Join(clauses, " AND "), kArg,
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.New(apperror.ErrUpstreamUnavailable, apperror.StageQuery, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var chunkID, document, content string
		var metaBytes []byte
		if err := rows.Scan(&chunkID, &document, &content, &metaBytes, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.ChunkID = models.ChunkID(chunkID)
		h.Document = document
		h.Content = content
		if len(metaBytes) > 0 {
			_ = json.Unmarshal(metaBytes, &h.Metadata)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PGStore) List(ctx context.Context, collection models.Collection, where Where) ([]Hit, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{string(collection)}
	args = appendWhere(&clauses, args, where)

	query := fmt.Sprintf(
		`SELECT chunk_id, document, content, metadata FROM chunks WHERE %s`,
		strings.Join(clauses, " AND "),
	)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.New(apperror.ErrUpstreamUnavailable, apperror.StageQuery, fmt.Errorf("list: %w", err))
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var chunkID, document, content string
		var metaBytes []byte
		if err := rows.Scan(&chunkID, &document, &content, &metaBytes); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		h.ChunkID = models.ChunkID(chunkID)
		h.Document = document
		h.Content = content
		if len(metaBytes) > 0 {
			_ = json.Unmarshal(metaBytes, &h.Metadata)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, collection models.Collection, where Where) (int, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{string(collection)}
	args = appendWhere(&clauses, args, where)

	query := fmt.Sprintf(`DELETE FROM chunks WHERE %s`, strings.Join(clauses, " AND "))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PGStore) Count(ctx context.Context, collection models.Collection, where Where) (int, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{string(collection)}
	args = appendWhere(&clauses, args, where)

	query := fmt.Sprintf(`SELECT count(*) FROM chunks WHERE %s`, strings.Join(clauses, " AND "))
	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *PGStore) ListDistinct(ctx context.Context, collection models.Collection, field string) ([]string, error) {
	col := "document"
	if field == "chunk_id" {
		col = "chunk_id"
	}
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM chunks WHERE collection = $1`, col)
	rows, err := s.pool.Query(ctx, query, string(collection))
	if err != nil {
		return nil, fmt.Errorf("list distinct: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PGStore) Heartbeat(ctx context.Context) bool {
	return s.pool.Ping(ctx) == nil
}

func appendWhere(clauses *[]string, args []interface{}, where Where) []interface{} {
	if len(where.DocumentIn) > 0 {
		args = append(args, where.DocumentIn)
		*clauses = append(*clauses, fmt.Sprintf("document = ANY($%d)", len(args)))
	}
	if len(where.DocumentNotIn) > 0 {
		args = append(args, where.DocumentNotIn)
		*clauses = append(*clauses, fmt.Sprintf("document <> ALL($%d)", len(args)))
	}
	if len(where.ChunkIDIn) > 0 {
		ids := make([]string, len(where.ChunkIDIn))
		for i, id := range where.ChunkIDIn {
			ids[i] = string(id)
		}
		args = append(args, ids)
		*clauses = append(*clauses, fmt.Sprintf("chunk_id = ANY($%d)", len(args)))
	}
	return args
}
