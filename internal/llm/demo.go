package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// DemoDimension is the embedding dimension the demo provider produces. It
// matches a common small embedding model so DEMO_MODE exercises the same
// code paths as a real provider.
const DemoDimension = 384

// DemoProvider returns deterministic, hash-derived output so tests and
// smoke runs never touch a network. Enabled by DEMO_MODE per spec.md §6.
type DemoProvider struct{}

func NewDemoProvider() *DemoProvider { return &DemoProvider{} }

func (p *DemoProvider) Name() string { return "demo" }

func (p *DemoProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	userMsg := ""
	for _, m := range req.Messages {
		if m.Role == "user" {
			userMsg = m.Content
		}
	}
	content := userMsg
	if len(content) > 200 {
		content = content[:200]
	}
	return &ChatResponse{
		Provider: "demo",
		Model:    "demo-echo",
		Content:  content,
	}, nil
}

func (p *DemoProvider) GenerateEmbedding(_ context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	embeddings := make([][]float32, len(req.Input))
	for i, text := range req.Input {
		embeddings[i] = HashEmbedding(text, DemoDimension)
	}
	return &EmbeddingResponse{
		Provider:   "demo",
		Model:      "demo-hash",
		Embeddings: embeddings,
	}, nil
}

// HashEmbedding derives a fixed-dimension, deterministic vector from text
// via repeated SHA-256, so the same input always produces the same vector
// without any network call.
func HashEmbedding(text string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(text)
	h := sha256.Sum256(seed)

	for i := 0; i < dim; i++ {
		if i > 0 && i%32 == 0 {
			h = sha256.Sum256(h[:])
		}
		off := (i % 32)
		bits := binary.BigEndian.Uint32(padTo4(h[off:]))
		// Map to [-1, 1].
		vec[i] = float32(bits%2000)/1000.0 - 1.0
	}
	return vec
}

func padTo4(b []byte) []byte {
	if len(b) >= 4 {
		return b[:4]
	}
	out := make([]byte, 4)
	copy(out, b)
	return out
}
