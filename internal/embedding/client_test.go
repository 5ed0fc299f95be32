package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/llm"
)

func TestEmbedReturnsOneVectorPerInput(t *testing.T) {
	gw := llm.NewGateway(config.LLMConfig{}, true)
	c := NewClient(gw, "demo-hash", "demo")

	vecs, err := c.Embed(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Len(t, vecs[0], llm.DemoDimension)
}

func TestEmbedIsDeterministic(t *testing.T) {
	gw := llm.NewGateway(config.LLMConfig{}, true)
	c := NewClient(gw, "demo-hash", "demo")

	a, err := c.EmbedSingle(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	b, err := c.EmbedSingle(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedEmptyInputReturnsNil(t *testing.T) {
	gw := llm.NewGateway(config.LLMConfig{}, true)
	c := NewClient(gw, "demo-hash", "demo")

	vecs, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedSplitsAcrossBatches(t *testing.T) {
	gw := llm.NewGateway(config.LLMConfig{}, true)
	c := NewClient(gw, "demo-hash", "demo")
	c.batchSize = 2

	texts := []string{"a", "b", "c", "d", "e"}
	vecs, err := c.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, len(texts))
}
