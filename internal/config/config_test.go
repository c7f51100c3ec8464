package config

import (
	"testing"
	"time"
)

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("RERANK_TOP_N", "")
	t.Setenv("RERANK_FALLBACK", "")
	t.Setenv("DEFAULT_PROMPT_VERSION", "")

	cfg := Load()
	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected default chunk size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Fatalf("expected default overlap 200, got %d", cfg.ChunkOverlap)
	}
	if cfg.RetrievalTopK != 20 {
		t.Fatalf("expected default top-k 20, got %d", cfg.RetrievalTopK)
	}
	if cfg.RerankTopN != 5 {
		t.Fatalf("expected default top-n 5, got %d", cfg.RerankTopN)
	}
	if !cfg.RerankFallback {
		t.Fatalf("expected rerank fallback enabled by default")
	}
	if cfg.DefaultPromptVersion != "v2.0" {
		t.Fatalf("expected default prompt version v2.0, got %q", cfg.DefaultPromptVersion)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "40")
	t.Setenv("RERANK_TOP_N", "8")
	t.Setenv("RERANK_FALLBACK", "false")
	t.Setenv("GENERATE_TIMEOUT", "45s")

	cfg := Load()
	if cfg.RetrievalTopK != 40 {
		t.Fatalf("expected top-k 40, got %d", cfg.RetrievalTopK)
	}
	if cfg.RerankTopN != 8 {
		t.Fatalf("expected top-n 8, got %d", cfg.RerankTopN)
	}
	if cfg.RerankFallback {
		t.Fatalf("expected rerank fallback disabled")
	}
	if cfg.GenerateTimeout != 45*time.Second {
		t.Fatalf("expected 45s generate timeout, got %v", cfg.GenerateTimeout)
	}
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"overlap >= chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"top-n > top-k", func(c *Config) { c.RerankTopN = c.RetrievalTopK + 1 }},
		{"zero top-k", func(c *Config) { c.RetrievalTopK = 0 }},
		{"empty default prompt", func(c *Config) { c.DefaultPromptVersion = "" }},
	}

	for _, tc := range cases {
		cfg := Load()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
