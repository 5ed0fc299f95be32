package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

func newTestPipeline() (*Pipeline, vectorstore.VectorStore, *registry.Registry) {
	store := vectorstore.NewMemoryStore()
	gw := llm.NewGateway(config.LLMConfig{}, true)
	embedder := embedding.NewClient(gw, "demo-hash", "demo")
	reg := registry.New()
	return New(store, embedder, gw, reg, nil, 200, 20, 4), store, reg
}

func repeatedParagraphs(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("This is sentence one of a test paragraph. This is sentence two with more words in it. ")
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func TestUploadProducesChunksAndRegisters(t *testing.T) {
	p, _, reg := newTestPipeline()
	res, err := p.Upload(context.Background(), UploadParams{Filename: "doc.txt", Text: repeatedParagraphs(20)})
	require.NoError(t, err)
	assert.Greater(t, res.ChunkCount, 0)
	assert.True(t, reg.HasCollection("doc.txt", models.CollectionDocuments))
}

func TestUploadRejectsDuplicateWithoutForce(t *testing.T) {
	p, _, _ := newTestPipeline()
	ctx := context.Background()
	text := repeatedParagraphs(5)

	_, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text})
	require.NoError(t, err)

	_, err = p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)
}

func TestUploadForceOverwrites(t *testing.T) {
	p, _, _ := newTestPipeline()
	ctx := context.Background()
	text := repeatedParagraphs(5)

	_, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text})
	require.NoError(t, err)

	_, err = p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text, Force: true})
	require.NoError(t, err)
}

// TestUploadForceWithSmallerContentDropsStaleChunks covers the case a
// byte-identical re-upload can't: new content that chunks into fewer
// pieces than the original ingest. Without deleting the prior chunks
// first, the higher-indexed ones from the larger original would survive
// alongside the new, smaller set.
func TestUploadForceWithSmallerContentDropsStaleChunks(t *testing.T) {
	p, store, _ := newTestPipeline()
	ctx := context.Background()

	first, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: repeatedParagraphs(40)})
	require.NoError(t, err)

	second, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: repeatedParagraphs(3), Force: true})
	require.NoError(t, err)

	require.Less(t, second.ChunkCount, first.ChunkCount)

	count, err := store.Count(ctx, models.CollectionDocuments, vectorstore.Where{DocumentIn: []string{"doc.txt"}})
	require.NoError(t, err)
	assert.Equal(t, second.ChunkCount, count)
}

// TestUploadForceSkipsRewriteWhenContentHashUnchanged covers the
// idempotency shortcut: a forced re-ingest of byte-identical content
// shouldn't re-chunk, re-embed, or touch the store at all.
func TestUploadForceSkipsRewriteWhenContentHashUnchanged(t *testing.T) {
	p, store, reg := newTestPipeline()
	ctx := context.Background()
	text := repeatedParagraphs(5)

	first, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ContentHash)

	doc, ok := reg.Get("doc.txt")
	require.True(t, ok)
	assert.Equal(t, first.ContentHash, doc.ContentHash)

	second, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: text, Force: true})
	require.NoError(t, err)
	assert.Equal(t, first.ChunkCount, second.ChunkCount)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	count, err := store.Count(ctx, models.CollectionDocuments, vectorstore.Where{DocumentIn: []string{"doc.txt"}})
	require.NoError(t, err)
	assert.Equal(t, first.ChunkCount, count)
}

func TestSummariesRequiresExistingRawChunks(t *testing.T) {
	p, _, _ := newTestPipeline()
	_, err := p.Summaries(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSummariesBuildsLogicalWindows(t *testing.T) {
	p, _, reg := newTestPipeline()
	ctx := context.Background()

	_, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: repeatedParagraphs(30)})
	require.NoError(t, err)

	res, err := p.Summaries(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Greater(t, res.SummaryCount, 0)
	assert.True(t, reg.HasCollection("doc.txt", models.CollectionLogicalSummaries))
}

func TestParagraphsBuildsSummaries(t *testing.T) {
	p, _, reg := newTestPipeline()
	ctx := context.Background()

	_, err := p.Upload(ctx, UploadParams{Filename: "doc.txt", Text: repeatedParagraphs(30)})
	require.NoError(t, err)

	res, err := p.Paragraphs(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Greater(t, res.SummaryCount, 0)
	assert.True(t, reg.HasCollection("doc.txt", models.CollectionParagraphSummaries))
}
