package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"ragpipe/internal/domain"
)

// PipelineConfig controls chunking, retrieval and indexing throughput.
type PipelineConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	MaxResults     int     `yaml:"max_results"`
	RateLimitDelay float64 `yaml:"rate_limit_delay"` // seconds between remote embedding calls
}

// OpenAIConfig configures the OpenAI embeddings provider. The key itself
// lives in the environment variable named by APIKeyEnv.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OllamaConfig configures the Ollama embeddings provider.
type OllamaConfig struct {
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LocalConfig configures the in-process embedder.
type LocalConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects the embedding provider. UseLocalEmbeddings forces
// the local provider regardless of Type.
type EmbedderConfig struct {
	Type               string        `yaml:"type"`
	UseLocalEmbeddings bool          `yaml:"use_local_embeddings"`
	OpenAI             *OpenAIConfig `yaml:"openai,omitempty"`
	Ollama             *OllamaConfig `yaml:"ollama,omitempty"`
	Local              *LocalConfig  `yaml:"local,omitempty"`
}

// SQLiteIndexConfig holds the database path for the sqlite index.
type SQLiteIndexConfig struct {
	Path string `yaml:"path"`
}

// QdrantIndexConfig contains connection details for a Qdrant server.
type QdrantIndexConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// VectorIndexConfig selects and configures the vector index backend.
type VectorIndexConfig struct {
	Type   string             `yaml:"type"`
	Name   string             `yaml:"name"`
	Metric string             `yaml:"metric"`
	SQLite *SQLiteIndexConfig `yaml:"sqlite,omitempty"`
	Qdrant *QdrantIndexConfig `yaml:"qdrant,omitempty"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorIndex VectorIndexConfig `yaml:"vector_index"`
}

// Load reads a config from path. If the file does not exist, returns
// defaults. The result is validated.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EmbedderType resolves the effective provider type.
func (c *AppConfig) EmbedderType() string {
	if c.Embedder.UseLocalEmbeddings {
		return "local"
	}
	return c.Embedder.Type
}

// Validate enforces the structural invariants the pipeline relies on.
func (c *AppConfig) Validate() error {
	p := c.Pipeline
	if p.ChunkSize <= 0 {
		return &domain.ConfigurationError{Field: "pipeline.chunk_size", Reason: "must be positive, got " + strconv.Itoa(p.ChunkSize)}
	}
	if p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize {
		return &domain.ConfigurationError{Field: "pipeline.chunk_overlap", Reason: "must be in [0, chunk_size)"}
	}
	if p.MaxResults <= 0 {
		return &domain.ConfigurationError{Field: "pipeline.max_results", Reason: "must be positive, got " + strconv.Itoa(p.MaxResults)}
	}
	if p.RateLimitDelay < 0 {
		return &domain.ConfigurationError{Field: "pipeline.rate_limit_delay", Reason: "must not be negative"}
	}
	if c.VectorIndex.Name == "" {
		return &domain.ConfigurationError{Field: "vector_index.name", Reason: "must not be empty"}
	}
	if !domain.Metric(c.VectorIndex.Metric).Valid() {
		return &domain.ConfigurationError{Field: "vector_index.metric", Reason: "unsupported metric " + c.VectorIndex.Metric}
	}
	switch c.EmbedderType() {
	case "openai", "ollama", "local":
	default:
		return &domain.ConfigurationError{Field: "embedder.type", Reason: "unknown embedder " + c.Embedder.Type}
	}
	switch c.VectorIndex.Type {
	case "memory", "sqlite", "qdrant":
	default:
		return &domain.ConfigurationError{Field: "vector_index.type", Reason: "unknown vector index " + c.VectorIndex.Type}
	}
	return nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Pipeline: PipelineConfig{
			ChunkSize:      1000,
			ChunkOverlap:   200,
			MaxResults:     3,
			RateLimitDelay: 0.5,
		},
		Embedder: EmbedderConfig{Type: "local"},
		VectorIndex: VectorIndexConfig{
			Type:   "memory",
			Name:   "guidelines",
			Metric: string(domain.MetricCosine),
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = 1000
	}
	if cfg.Pipeline.ChunkOverlap == 0 {
		cfg.Pipeline.ChunkOverlap = 200
	}
	if cfg.Pipeline.MaxResults == 0 {
		cfg.Pipeline.MaxResults = 3
	}
	if cfg.Pipeline.RateLimitDelay == 0 {
		cfg.Pipeline.RateLimitDelay = 0.5
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-ada-002"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "ollama" && cfg.Embedder.Ollama != nil {
		if cfg.Embedder.Ollama.Host == "" {
			cfg.Embedder.Ollama.Host = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "nomic-embed-text"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 30
		}
	}
	if cfg.VectorIndex.Type == "" {
		cfg.VectorIndex.Type = "memory"
	}
	if cfg.VectorIndex.Name == "" {
		cfg.VectorIndex.Name = "guidelines"
	}
	if cfg.VectorIndex.Metric == "" {
		cfg.VectorIndex.Metric = string(domain.MetricCosine)
	}
	if cfg.VectorIndex.Type == "sqlite" && cfg.VectorIndex.SQLite != nil && cfg.VectorIndex.SQLite.Path == "" {
		cfg.VectorIndex.SQLite.Path = cfg.VectorIndex.Name + ".db"
	}
}
