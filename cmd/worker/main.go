package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/ragcore/internal/config"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/queue"
	"github.com/nikhilbhutani/ragcore/internal/queue/workers"
	"github.com/nikhilbhutani/ragcore/internal/registry"
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

	// The worker has no search cache of its own to invalidate; ragctl and
	// the API server share one with the search engine they also serve.
	pipeline := ingest.New(store, embedder, gateway, reg, nil, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Ingest.SummaryConcurrency)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	documentWorker := workers.NewDocumentWorker(pipeline)

	handlerRegistry := queue.NewHandlersRegistry()
	handlerRegistry.Register(queue.TypeDocumentUpload, asynq.HandlerFunc(documentWorker.ProcessUpload))
	handlerRegistry.Register(queue.TypeDocumentSummaries, asynq.HandlerFunc(documentWorker.ProcessSummaries))
	handlerRegistry.Register(queue.TypeDocumentParagraphs, asynq.HandlerFunc(documentWorker.ProcessParagraphs))

	slog.Info("starting ingestion worker")
	if err := srv.Run(handlerRegistry.Mux()); err != nil {
		slog.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
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
