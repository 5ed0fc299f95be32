package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

func newTestEmbedder() *embedding.Client {
	gw := llm.NewGateway(config.LLMConfig{}, true)
	return embedding.NewClient(gw, "demo-hash", "demo")
}

func newTestEngine(t *testing.T) (*Engine, *vectorstore.MemoryStore, *registry.Registry) {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	reg := registry.New()
	cache := searchcache.New(100, time.Hour)
	return New(store, newTestEmbedder(), reg, cache), store, reg
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Search(context.Background(), Request{Query: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuery)
}

func TestSearchEmptyStoreReturnsFreshSearchID(t *testing.T) {
	e, _, _ := newTestEngine(t)
	result, err := e.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SearchID)
	assert.Empty(t, result.Results)
	assert.Contains(t, result.CollectionsSearched, models.CollectionDocuments)
}

func TestSearchDefaultsToBasicWhenNoSummaries(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	vec, err := newTestEmbedder().EmbedSingle(ctx, "hello world")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, models.CollectionDocuments, []vectorstore.UpsertItem{
		{ChunkID: "doc::documents::000000", Document: "doc", Vector: vec, Content: "hello world"},
	}))

	result, err := e.Search(ctx, Request{Query: "hello world", TopK: 5})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, models.CollectionDocuments, result.Results[0].Collection)
	assert.Equal(t, []models.Collection{models.CollectionDocuments}, result.CollectionsSearched)
}

// kRecordingStore wraps a MemoryStore and records the k argument every
// Query call receives, so tests can assert on the over-fetch factor
// without needing an approximate index to observe a recall difference.
type kRecordingStore struct {
	*vectorstore.MemoryStore
	queriedK []int
}

func (s *kRecordingStore) Query(ctx context.Context, collection models.Collection, vector []float32, k int, where vectorstore.Where) ([]vectorstore.Hit, error) {
	s.queriedK = append(s.queriedK, k)
	return s.MemoryStore.Query(ctx, collection, vector, k, where)
}

func TestSearchOverFetchesPerCollectionBeforeMerging(t *testing.T) {
	ctx := context.Background()
	spy := &kRecordingStore{MemoryStore: vectorstore.NewMemoryStore()}
	reg := registry.New()
	cache := searchcache.New(100, time.Hour)
	e := New(spy, newTestEmbedder(), reg, cache)

	_, err := e.Search(ctx, Request{Query: "hello world", TopK: 5})
	require.NoError(t, err)

	require.NotEmpty(t, spy.queriedK)
	for _, k := range spy.queriedK {
		assert.Equal(t, 15, k)
	}
}

func TestSearchPrefersParagraphStrategyWhenPopulated(t *testing.T) {
	ctx := context.Background()
	e, store, reg := newTestEngine(t)
	reg.Record("doc", models.CollectionParagraphSummaries, 1)

	require.NoError(t, store.Upsert(ctx, models.CollectionParagraphSummaries, []vectorstore.UpsertItem{
		{ChunkID: "doc::paragraph_summaries::000000", Document: "doc", Vector: []float32{1, 0}, Content: "summary"},
	}))

	result, err := e.Search(ctx, Request{Query: "anything", Documents: []string{"doc"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Collection{models.CollectionDocuments, models.CollectionParagraphSummaries}, result.CollectionsSearched)
}
