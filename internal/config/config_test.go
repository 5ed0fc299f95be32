package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRAGEnv(t *testing.T) {
	keys := []string{
		"SERVER_PORT", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_DB",
		"LLM_MAX_RETRIES", "CHUNK_SIZE", "CHUNK_OVERLAP", "MAX_CHUNKS",
		"CITATION_THRESHOLD", "SEARCH_CACHE_CAPACITY", "SEARCH_CACHE_TTL_SEC",
		"SUMMARY_CONCURRENCY", "VECTOR_STORE_URL", "DEMO_MODE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearRAGEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 0.40, cfg.Search.CitationThreshold)
	assert.Equal(t, 4, cfg.Ingest.SummaryConcurrency)
	assert.False(t, cfg.DemoMode)
}

func TestValidateRequiresVectorStoreURLOutsideDemoMode(t *testing.T) {
	clearRAGEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())

	cfg.DemoMode = true
	assert.NoError(t, cfg.Validate())
}

func TestAddrCombinesHostAndPort(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 9090}}
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoadRejectsInvalidIntEnv(t *testing.T) {
	clearRAGEnv(t)
	os.Setenv("SERVER_PORT", "not-a-number")
	defer os.Unsetenv("SERVER_PORT")

	_, err := Load()
	assert.Error(t, err)
}
