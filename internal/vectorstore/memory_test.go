package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/models"
)

func TestMemoryStoreQueryOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, models.CollectionDocuments, []UpsertItem{
		{ChunkID: "doc::documents::000000", Document: "doc", Vector: []float32{1, 0}, Content: "near"},
		{ChunkID: "doc::documents::000001", Document: "doc", Vector: []float32{0, 1}, Content: "far"},
	}))

	hits, err := s.Query(ctx, models.CollectionDocuments, []float32{1, 0}, 2, Where{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].Content)
	assert.Equal(t, "far", hits[1].Content)
}

func TestMemoryStoreWhereFiltersByDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, models.CollectionDocuments, []UpsertItem{
		{ChunkID: "a::documents::000000", Document: "a", Vector: []float32{1, 0}},
		{ChunkID: "b::documents::000000", Document: "b", Vector: []float32{1, 0}},
	}))

	hits, err := s.Query(ctx, models.CollectionDocuments, []float32{1, 0}, 10, Where{DocumentNotIn: []string{"b"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document)
}

func TestMemoryStoreDeleteAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, models.CollectionDocuments, []UpsertItem{
		{ChunkID: "a::documents::000000", Document: "a", Vector: []float32{1, 0}},
	}))

	n, err := s.Delete(ctx, models.CollectionDocuments, Where{DocumentIn: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.Count(ctx, models.CollectionDocuments, Where{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStoreListDistinct(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, models.CollectionDocuments, []UpsertItem{
		{ChunkID: "a::documents::000000", Document: "a", Vector: []float32{1}},
		{ChunkID: "a::documents::000001", Document: "a", Vector: []float32{1}},
		{ChunkID: "b::documents::000000", Document: "b", Vector: []float32{1}},
	}))

	docs, err := s.ListDistinct(ctx, models.CollectionDocuments, "document")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, docs)
}
