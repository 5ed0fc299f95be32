package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

func TestRecordCreatesAndUpdatesDocument(t *testing.T) {
	r := New()

	doc := r.Record("a.txt", models.CollectionDocuments, 3)
	assert.Equal(t, 3, doc.ChunkCounts[models.CollectionDocuments])
	assert.True(t, r.Has("a.txt"))
	assert.True(t, r.HasCollection("a.txt", models.CollectionDocuments))
	assert.False(t, r.HasCollection("a.txt", models.CollectionLogicalSummaries))

	r.Record("a.txt", models.CollectionDocuments, 5)
	got, ok := r.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, 5, got.ChunkCounts[models.CollectionDocuments])
}

func TestRecordHashStampsContentHash(t *testing.T) {
	r := New()
	r.Record("a.txt", models.CollectionDocuments, 3)
	r.RecordHash("a.txt", "deadbeef")

	doc, ok := r.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "deadbeef", doc.ContentHash)

	r.RecordHash("a.txt", "cafef00d")
	doc, ok = r.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "cafef00d", doc.ContentHash)
}

func TestForgetAndClearAll(t *testing.T) {
	r := New()
	r.Record("a.txt", models.CollectionDocuments, 1)
	r.Record("b.txt", models.CollectionDocuments, 1)

	r.Forget("a.txt")
	assert.False(t, r.Has("a.txt"))
	assert.True(t, r.Has("b.txt"))

	r.ClearAll()
	assert.Empty(t, r.List())
}

func TestListIsSortedByFilename(t *testing.T) {
	r := New()
	r.Record("zeta.txt", models.CollectionDocuments, 1)
	r.Record("alpha.txt", models.CollectionDocuments, 1)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha.txt", list[0].Filename)
	assert.Equal(t, "zeta.txt", list[1].Filename)
}

func TestRebuildReplacesContentsFromStore(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, models.CollectionDocuments, []vectorstore.UpsertItem{
		{ChunkID: models.NewChunkID("doc.txt", models.CollectionDocuments, 0), Document: "doc.txt", Vector: []float32{1}, Content: "hello"},
	}))

	r := New()
	r.Record("stale.txt", models.CollectionDocuments, 9)

	require.NoError(t, r.Rebuild(ctx, store))

	assert.False(t, r.Has("stale.txt"))
	assert.True(t, r.HasCollection("doc.txt", models.CollectionDocuments))
	doc, ok := r.Get("doc.txt")
	require.True(t, ok)
	assert.Equal(t, 1, doc.ChunkCounts[models.CollectionDocuments])
}
