package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/ragcore/internal/api"
	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/qa"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/storage"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store vectorstore.VectorStore
	if cfg.DemoMode {
		slog.Info("DEMO_MODE enabled, using in-memory vector store")
		store = vectorstore.NewMemoryStore()
	} else {
		pgStore, err := vectorstore.NewPGStore(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("failed to connect to vector store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	}

	gateway := llm.NewGateway(cfg.LLM, cfg.DemoMode)
	embedder := embedding.NewClient(gateway, cfg.LLM.EmbeddingModel, embeddingProvider(cfg))

	reg := registry.New()
	if err := reg.Rebuild(ctx, store); err != nil {
		slog.Warn("registry rebuild failed, starting with an empty inventory", "error", err)
	}

	cache := searchcache.New(cfg.Search.CacheCapacity, time.Duration(cfg.Search.CacheTTLSeconds)*time.Second)
	engine := search.New(store, embedder, reg, cache)
	pipeline := ingest.New(store, embedder, gateway, reg, cache, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Ingest.SummaryConcurrency)
	orchestrator := qa.New(store, engine, cache, gateway, cfg.Search.CitationThreshold, cfg.Chunking.MaxChunks)

	var objectStore storage.Store = storage.NewNoop()
	if cfg.ObjectStore.URL != "" {
		objectStore = storage.NewHTTPStore(cfg.ObjectStore.URL, cfg.ObjectStore.AccessKey, cfg.ObjectStore.SecretKey, cfg.ObjectStore.Bucket)
	}

	router := api.NewRouter(store, reg, pipeline, engine, orchestrator, objectStore, cache)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// embeddingProvider picks the provider for the embedding client
// explicitly rather than relying on the gateway's chat default, since
// Anthropic (a valid chat default) has no embeddings API.
func embeddingProvider(cfg *config.Config) string {
	if cfg.DemoMode {
		return "demo"
	}
	if cfg.LLM.OpenAIKey != "" {
		return "openai"
	}
	return cfg.LLM.DefaultProvider
}
