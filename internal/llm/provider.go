// Package llm provides the chat/completion and embedding client wrappers
// (C1, C2) used by the ingestion pipeline, search engine, and QA
// orchestrator. Grounded on the teacher's internal/llm multi-provider
// gateway, narrowed to the two operations this spec names (Complete,
// Summarize) plus the embedding path, with the teacher's retry/fallback
// machinery kept intact.
package llm

import "context"

// Provider abstracts a single LLM backend (OpenAI, Anthropic, demo stub).
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Name() string
}

// Gateway provides multi-provider routing with fallback and retry, plus
// the Complete/Summarize operations §4.3 names.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Complete(ctx context.Context, systemPrompt, userMessage string, params CompleteParams) (string, error)
	Summarize(ctx context.Context, instruction, body string, targetRatio float64) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

type EmbeddingRequest struct {
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model"`
	Input    []string `json:"input"`
}

type EmbeddingResponse struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Tokens     int         `json:"tokens"`
	CostUSD    float64     `json:"cost_usd"`
}

// CompleteParams tunes a Q&A completion call; temperature is clamped to
// ≤0.3 by Complete per spec.md §4.3's "deterministic-enough" requirement.
type CompleteParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}
