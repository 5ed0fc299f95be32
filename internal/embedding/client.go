// Package embedding implements C1: batched text-to-vector embedding on top
// of the LLM gateway's Embed call. Grounded on the teacher's
// internal/embedding/service.go, with the spec's batch size (96) and
// invariant that returned vector count must equal input count (enforced
// one layer down, inside llm.Gateway.Embed).
package embedding

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/llm"
)

// DefaultBatchSize is the provider-defined per-call limit from spec.md §4.2.
const DefaultBatchSize = 96

type Client struct {
	gateway   llm.Gateway
	model     string
	provider  string
	batchSize int
}

func NewClient(gw llm.Gateway, model, provider string) *Client {
	return &Client{gateway: gw, model: model, provider: provider, batchSize: DefaultBatchSize}
}

// Embed converts a batch of strings to dense vectors, splitting into
// provider-sized sub-batches transparently. Returns apperror.ErrUpstreamUnavailable
// (stage=embed) once the gateway's retries are exhausted.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		resp, err := c.gateway.Embed(ctx, llm.EmbeddingRequest{
			Provider: c.provider,
			Model:    c.model,
			Input:    batch,
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		all = append(all, resp.Embeddings...)
	}

	if len(all) != len(texts) {
		return nil, apperror.New(apperror.ErrInternal, apperror.StageEmbed,
			fmt.Errorf("embedding count mismatch: got %d want %d", len(all), len(texts)))
	}
	return all, nil
}

func (c *Client) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, apperror.New(apperror.ErrInternal, apperror.StageEmbed, fmt.Errorf("no embedding returned"))
	}
	return vecs[0], nil
}
