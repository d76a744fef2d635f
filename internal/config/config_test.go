package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ragpipe/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.ChunkSize != 1000 || cfg.Pipeline.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d, want 1000/200", cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	}
	if cfg.Pipeline.MaxResults != 3 {
		t.Errorf("max_results default = %d, want 3", cfg.Pipeline.MaxResults)
	}
	if cfg.Pipeline.RateLimitDelay != 0.5 {
		t.Errorf("rate_limit_delay default = %v, want 0.5", cfg.Pipeline.RateLimitDelay)
	}
	if cfg.VectorIndex.Name != "guidelines" || cfg.VectorIndex.Metric != "cosine" {
		t.Errorf("index defaults = %s/%s", cfg.VectorIndex.Name, cfg.VectorIndex.Metric)
	}
	if cfg.EmbedderType() != "local" {
		t.Errorf("embedder default = %s, want local", cfg.EmbedderType())
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  chunk_size: 400
  chunk_overlap: 50
  max_results: 5
  rate_limit_delay: 1.5
embedder:
  type: openai
  openai:
    model: text-embedding-3-small
vector_index:
  type: sqlite
  name: handbook
  metric: dot
  sqlite: {}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.ChunkSize != 400 || cfg.Pipeline.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d", cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	}
	if cfg.Embedder.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("api_key_env default not applied: %q", cfg.Embedder.OpenAI.APIKeyEnv)
	}
	if cfg.VectorIndex.SQLite.Path != "handbook.db" {
		t.Errorf("sqlite path default = %q, want handbook.db", cfg.VectorIndex.SQLite.Path)
	}
}

func TestUseLocalEmbeddingsOverridesType(t *testing.T) {
	path := writeConfig(t, `
embedder:
  type: openai
  use_local_embeddings: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbedderType() != "local" {
		t.Errorf("EmbedderType = %s, want local", cfg.EmbedderType())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"overlap equals size", "pipeline: {chunk_size: 100, chunk_overlap: 100}"},
		{"overlap exceeds size", "pipeline: {chunk_size: 100, chunk_overlap: 300}"},
		{"negative chunk size", "pipeline: {chunk_size: -1}"},
		{"negative max results", "pipeline: {max_results: -2}"},
		{"negative delay", "pipeline: {rate_limit_delay: -0.5}"},
		{"bad metric", "vector_index: {metric: manhattan}"},
		{"bad embedder", "embedder: {type: mystery}"},
		{"bad index type", "vector_index: {type: pinecone}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			var cfgErr *domain.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestSaveRoundtrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.VectorIndex.Name = "saved"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.VectorIndex.Name != "saved" {
		t.Errorf("round-tripped name = %q", loaded.VectorIndex.Name)
	}
}
