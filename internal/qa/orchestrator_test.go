package qa

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
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, vectorstore.VectorStore, *searchcache.Cache, *embedding.Client) {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	gw := llm.NewGateway(config.LLMConfig{}, true)
	embedder := embedding.NewClient(gw, "demo-hash", "demo")
	reg := registry.New()
	cache := searchcache.New(100, time.Hour)
	engine := search.New(store, embedder, reg, cache)
	orch := New(store, engine, cache, gw, 0.40, 8)
	return orch, store, cache, embedder
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(t)
	_, err := orch.Ask(context.Background(), Request{Question: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuery)
}

func TestAskWithEmptyStoreReturnsInsufficientDataNotError(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(t)
	resp, err := orch.Ask(context.Background(), Request{Question: "what happened?"})
	require.NoError(t, err)
	assert.Equal(t, "I don't know based on the provided documents.", resp.Answer)
	assert.Empty(t, resp.RawCitations)
}

func TestAskUsesCachedSearchIDWithinTTL(t *testing.T) {
	ctx := context.Background()
	orch, store, cache, embedder := newTestOrchestrator(t)

	vec, err := embedder.EmbedSingle(ctx, "neural networks are great")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, models.CollectionDocuments, []vectorstore.UpsertItem{
		{ChunkID: "doc::documents::000000", Document: "doc", Vector: vec, Content: "neural networks are great"},
	}))

	result := &models.SearchResultSet{
		SearchID: "fixed-search-id",
		Query:    "neural networks",
		Results: []models.SearchHit{
			{Content: "neural networks are great", Score: 0.9, Document: "doc", ChunkID: "doc::documents::000000", Collection: models.CollectionDocuments},
		},
	}
	cache.Put(result)

	resp, err := orch.Ask(ctx, Request{Question: "what are neural networks?", SearchID: "fixed-search-id"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RawCitations)
	assert.Contains(t, resp.Sources, "doc")
}

func TestAskFallsThroughOnCacheMiss(t *testing.T) {
	ctx := context.Background()
	orch, store, _, embedder := newTestOrchestrator(t)

	vec, err := embedder.EmbedSingle(ctx, "hello world")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, models.CollectionDocuments, []vectorstore.UpsertItem{
		{ChunkID: "doc::documents::000000", Document: "doc", Vector: vec, Content: "hello world"},
	}))

	resp, err := orch.Ask(ctx, Request{Question: "hello world", SearchID: "not-cached"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
}
