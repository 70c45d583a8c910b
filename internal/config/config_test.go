package config

import "testing"

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("BATCH_MAX_WORKERS", "")
	t.Setenv("GENERATE_MAX_ATTEMPTS", "")
	t.Setenv("GENERATE_RETRY_BACKOFF_MS", "")
	t.Setenv("RAG_TOP_K", "")

	cfg := Load()
	if cfg.BatchMaxWorkers != 3 {
		t.Fatalf("expected default batch workers 3, got %d", cfg.BatchMaxWorkers)
	}
	if cfg.GenerateMaxAttempts != 3 {
		t.Fatalf("expected default generate attempts 3, got %d", cfg.GenerateMaxAttempts)
	}
	if cfg.GenerateRetryBackoffMS != 500 {
		t.Fatalf("expected default retry backoff 500ms, got %d", cfg.GenerateRetryBackoffMS)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected default rag top k 5, got %d", cfg.RAGTopK)
	}
}

func TestLoadParsesPipelineOverrides(t *testing.T) {
	t.Setenv("BATCH_MAX_WORKERS", "8")
	t.Setenv("GENERATE_MAX_ATTEMPTS", "5")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("API_RATE_LIMIT_BURST", "50")

	cfg := Load()
	if cfg.BatchMaxWorkers != 8 {
		t.Fatalf("expected batch workers 8, got %d", cfg.BatchMaxWorkers)
	}
	if cfg.GenerateMaxAttempts != 5 {
		t.Fatalf("expected generate attempts 5, got %d", cfg.GenerateMaxAttempts)
	}
	if cfg.APIRateLimitRPS != 25 || cfg.APIRateLimitBurst != 50 {
		t.Fatalf("expected rate limit override 25/50, got %d/%d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
}

func TestLoadIgnoresMalformedIntegers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()
	if cfg.ChunkSize != 900 {
		t.Fatalf("expected fallback chunk size 900, got %d", cfg.ChunkSize)
	}
}
