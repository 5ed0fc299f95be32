// Package vectorstore implements C3: collection-keyed CRUD and k-NN query
// over chunks, with per-collection metadata filtering. Grounded on the
// teacher's internal/vectorstore (pgx/v5 + pgvector-go), generalized from a
// single tenant-scoped table into a collection-scoped one so the three
// named collections (documents, logical_summaries, paragraph_summaries)
// share one schema, the way the teacher already stores free-form metadata
// as JSONB.
package vectorstore

import (
	"context"

	"github.com/nikhilbhutani/ragcore/internal/models"
)

// UpsertItem is one chunk to write; idempotent on ChunkID.
type UpsertItem struct {
	ChunkID   models.ChunkID
	Document  string
	Vector    []float32
	Content   string
	Metadata  map[string]interface{}
}

// Where is a conjunction of exact-match metadata predicates.
type Where struct {
	DocumentIn      []string
	DocumentNotIn   []string
	ChunkIDIn       []models.ChunkID
}

func (w Where) Empty() bool {
	return len(w.DocumentIn) == 0 && len(w.DocumentNotIn) == 0 && len(w.ChunkIDIn) == 0
}

// Hit is a single k-NN query result, ordered ascending by distance.
type Hit struct {
	ChunkID  models.ChunkID
	Document string
	Content  string
	Distance float64
	Metadata map[string]interface{}
}

type VectorStore interface {
	Upsert(ctx context.Context, collection models.Collection, items []UpsertItem) error
	Query(ctx context.Context, collection models.Collection, vector []float32, k int, where Where) ([]Hit, error)
	// List fetches chunks matching where with no similarity ranking, used
	// to retrieve a document's raw chunks in bulk for summarization.
	List(ctx context.Context, collection models.Collection, where Where) ([]Hit, error)
	Delete(ctx context.Context, collection models.Collection, where Where) (int, error)
	Count(ctx context.Context, collection models.Collection, where Where) (int, error)
	ListDistinct(ctx context.Context, collection models.Collection, field string) ([]string, error)
	Heartbeat(ctx context.Context) bool
}
