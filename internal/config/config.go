package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	LLM         LLMConfig
	Chunking    ChunkingConfig
	Search      SearchConfig
	Ingest      IngestConfig
	ObjectStore ObjectStoreConfig
	DemoMode    bool
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	EmbeddingModel   string
	ChatModel        string
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	FallbackProvider string
	MaxRetries       int
}

type ChunkingConfig struct {
	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int
}

type SearchConfig struct {
	CitationThreshold float64
	CacheCapacity     int
	CacheTTLSeconds   int
}

type IngestConfig struct {
	SummaryConcurrency int
}

type ObjectStoreConfig struct {
	URL       string
	AccessKey string
	SecretKey string
	Bucket    string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	chunkSize, err := getEnvInt("CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %w", err)
	}
	chunkOverlap, err := getEnvInt("CHUNK_OVERLAP", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_OVERLAP: %w", err)
	}
	maxChunks, err := getEnvInt("MAX_CHUNKS", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CHUNKS: %w", err)
	}

	citationThreshold, err := getEnvFloat("CITATION_THRESHOLD", 0.40)
	if err != nil {
		return nil, fmt.Errorf("invalid CITATION_THRESHOLD: %w", err)
	}

	cacheCap, err := getEnvInt("SEARCH_CACHE_CAPACITY", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_CACHE_CAPACITY: %w", err)
	}
	cacheTTL, err := getEnvInt("SEARCH_CACHE_TTL_SEC", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_CACHE_TTL_SEC: %w", err)
	}

	summaryConcurrency, err := getEnvInt("SUMMARY_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:      getEnv("VECTOR_STORE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			ChatModel:        getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
			OpenAIKey:        getEnv("EMBEDDING_API_KEY", os.Getenv("LLM_API_KEY")),
			AnthropicKey:     getEnv("LLM_API_KEY", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
			MaxChunks:    maxChunks,
		},
		Search: SearchConfig{
			CitationThreshold: citationThreshold,
			CacheCapacity:     cacheCap,
			CacheTTLSeconds:   cacheTTL,
		},
		Ingest: IngestConfig{
			SummaryConcurrency: summaryConcurrency,
		},
		ObjectStore: ObjectStoreConfig{
			URL:       getEnv("OBJECT_STORE_URL", ""),
			AccessKey: getEnv("OBJECT_STORE_ACCESS_KEY", ""),
			SecretKey: getEnv("OBJECT_STORE_SECRET_KEY", ""),
			Bucket:    getEnv("OBJECT_STORE_BUCKET", "documents"),
		},
		DemoMode: getEnv("DEMO_MODE", "") != "",
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if !c.DemoMode && c.Database.URL == "" {
		missing = append(missing, "VECTOR_STORE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
