package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/config"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	retryFactor    = 2
	retryMaxAttempts = 3

	// defaultCallTimeout is the per-call wall-clock budget from spec.md
	// §4.3; callers may already carry a tighter deadline on ctx.
	defaultCallTimeout = 60 * time.Second

	maxTemperature = 0.3
)

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
	maxRetries       int
	embeddingModel   string
	chatModel        string
}

func NewGateway(cfg config.LLMConfig, demoMode bool) Gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
		maxRetries:       cfg.MaxRetries,
		embeddingModel:   cfg.EmbeddingModel,
		chatModel:        cfg.ChatModel,
	}

	if demoMode {
		g.providers["demo"] = NewDemoProvider()
		g.defaultProvider = "demo"
		return g
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	return g
}

func (g *gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, apperror.New(apperror.ErrUpstreamUnavailable, apperror.StageLLM,
			fmt.Errorf("provider %q not configured", name))
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	resp, err := g.chatWithRetry(ctx, providerName, req)
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != providerName {
		slog.Warn("primary llm provider failed, trying fallback",
			"primary", providerName, "fallback", g.fallbackProvider, "error", err)
		return g.chatWithRetry(ctx, g.fallbackProvider, req)
	}
	return resp, err
}

func (g *gateway) chatWithRetry(ctx context.Context, providerName string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.provider(providerName)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	attempts := g.maxRetries
	if attempts <= 0 {
		attempts = retryMaxAttempts
	}

	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-callCtx.Done():
				return nil, apperror.New(apperror.ErrCanceled, apperror.StageLLM, callCtx.Err())
			case <-time.After(delay):
			}
			delay *= retryFactor
			slog.Debug("retrying llm call", "provider", providerName, "attempt", attempt)
		}

		resp, err := p.ChatCompletion(callCtx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	if callCtx.Err() != nil {
		return nil, apperror.New(apperror.ErrLLMTimeout, apperror.StageLLM, callCtx.Err())
	}
	return nil, apperror.New(apperror.ErrUpstreamUnavailable, apperror.StageLLM,
		fmt.Errorf("all retries exhausted for %s: %w", providerName, lastErr))
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}
	p, err := g.provider(providerName)
	if err != nil {
		return nil, err
	}

	// Embedding calls get their own 30s wall-clock budget, covering all
	// retries; callers may already carry a tighter deadline on ctx.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	delay := retryBaseDelay
	var lastErr error
	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperror.New(apperror.ErrCanceled, apperror.StageEmbed, ctx.Err())
			case <-time.After(delay):
			}
			delay *= retryFactor
		}
		resp, err := p.GenerateEmbedding(ctx, req)
		if err == nil {
			if len(resp.Embeddings) != len(req.Input) {
				return nil, apperror.New(apperror.ErrInternal, apperror.StageEmbed,
					fmt.Errorf("embedding count mismatch: got %d want %d", len(resp.Embeddings), len(req.Input)))
			}
			return resp, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}
	return nil, apperror.New(apperror.ErrUpstreamUnavailable, apperror.StageEmbed, lastErr)
}

// Complete executes a single deterministic-enough Q&A completion.
func (g *gateway) Complete(ctx context.Context, systemPrompt, userMessage string, params CompleteParams) (string, error) {
	temp := params.Temperature
	if temp <= 0 || temp > maxTemperature {
		temp = maxTemperature
	}
	model := params.Model
	if model == "" {
		model = g.chatModel
	}

	resp, err := g.Chat(ctx, ChatRequest{
		Model:       model,
		Temperature: temp,
		MaxTokens:   params.MaxTokens,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Summarize compresses body per instruction, honoring targetRatio as a
// prompt directive and truncating the result at 1.2x the target length so
// a model that ignores the instruction can't blow the compression budget.
func (g *gateway) Summarize(ctx context.Context, instruction, body string, targetRatio float64) (string, error) {
	prompt := fmt.Sprintf(
		"%s\nTarget compression ratio: output length should be at most %.0f%% of the input length.\n\nText:\n%s",
		instruction, targetRatio*100, body,
	)

	resp, err := g.Chat(ctx, ChatRequest{
		Model:       g.chatModel,
		Temperature: 0.2,
		Messages: []Message{
			{Role: "system", Content: "You are a precise summarization assistant. Follow the compression target exactly."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	maxLen := int(float64(len(body)) * targetRatio * 1.2)
	return truncateRunes(strings.TrimSpace(resp.Content), maxLen), nil
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, sub := range []string{
		"timeout", "connection reset", "temporarily unavailable",
		"500", "502", "503", "504",
	} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
