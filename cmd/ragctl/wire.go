package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/qa"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

// wireServices builds the same service graph cmd/api and cmd/worker
// build, so ragctl exercises identical ingest/search/ask semantics
// without going through HTTP.
func wireServices(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.DemoMode {
		store = vectorstore.NewMemoryStore()
	} else {
		pgStore, err := vectorstore.NewPGStore(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect vector store: %w", err)
		}
		store = pgStore
	}

	gateway = llm.NewGateway(cfg.LLM, cfg.DemoMode)
	embedder = embedding.NewClient(gateway, cfg.LLM.EmbeddingModel, embeddingProvider(cfg))

	reg = registry.New()
	if err := reg.Rebuild(ctx, store); err != nil {
		return fmt.Errorf("rebuild registry: %w", err)
	}

	cache = searchcache.New(cfg.Search.CacheCapacity, time.Duration(cfg.Search.CacheTTLSeconds)*time.Second)
	engine = search.New(store, embedder, reg, cache)
	pipeline = ingest.New(store, embedder, gateway, reg, cache, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Ingest.SummaryConcurrency)
	orchestrator = qa.New(store, engine, cache, gateway, cfg.Search.CitationThreshold, cfg.Chunking.MaxChunks)

	return nil
}

func embeddingProvider(cfg *config.Config) string {
	if cfg.DemoMode {
		return "demo"
	}
	if cfg.LLM.OpenAIKey != "" {
		return "openai"
	}
	return cfg.LLM.DefaultProvider
}
