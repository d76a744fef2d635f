package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragpipe/internal/config"
	"ragpipe/internal/domain"
	"ragpipe/internal/embedding/local"
	"ragpipe/internal/embedding/ollama"
	"ragpipe/internal/embedding/openai"
	"ragpipe/internal/pipeline"
	"ragpipe/internal/tui"
	"ragpipe/internal/vectorstore/qdrant"
	"ragpipe/internal/vectorstore/sqlite"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	topK := flag.Int("top-k", 0, "Results per query (0 uses max_results from config)")
	confidenceFloor := flag.Float64("confidence-floor", 0.3, "Average score below which a retrieval is flagged")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.VectorIndex.Type == "memory" {
		log.Fatalf("the memory index does not outlive the indexing process; configure sqlite or qdrant for querying")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("failed to build embedding provider: %v", err)
	}
	index, closeIndex, err := buildIndex(cfg)
	if err != nil {
		log.Fatalf("failed to open vector index: %v", err)
	}
	defer closeIndex()

	// Querying needs the index provisioned with the same dimension and
	// metric that indexing used; EnsureCreated is idempotent.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = index.EnsureCreated(ctx, provider.Dimension(), domain.Metric(cfg.VectorIndex.Metric))
	cancel()
	if err != nil {
		log.Fatalf("index %q is not usable: %v", cfg.VectorIndex.Name, err)
	}

	retriever, err := pipeline.NewRetriever(provider, index, cfg.Pipeline.MaxResults)
	if err != nil {
		log.Fatalf("failed to build retriever: %v", err)
	}

	k := *topK
	if k <= 0 {
		k = cfg.Pipeline.MaxResults
	}
	if _, err := tea.NewProgram(tui.New(retriever, k, *confidenceFloor), tea.WithAltScreen()).Run(); err != nil {
		fmt.Println("error running TUI:", err)
	}
}

func buildProvider(cfg *config.AppConfig) (domain.EmbeddingProvider, error) {
	switch cfg.EmbedderType() {
	case "local":
		dim := 0
		if cfg.Embedder.Local != nil {
			dim = cfg.Embedder.Local.Dimension
		}
		return local.New(dim), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			oc = &config.OpenAIConfig{}
		}
		return openai.New(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Dimension: oc.Dimension,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
	case "ollama":
		oc := cfg.Embedder.Ollama
		if oc == nil {
			oc = &config.OllamaConfig{}
		}
		return ollama.New(ollama.Config{
			Host:      oc.Host,
			Model:     oc.Model,
			Dimension: oc.Dimension,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
	}
	return nil, &domain.ConfigurationError{Field: "embedder.type", Reason: "unknown embedder " + cfg.Embedder.Type}
}

func buildIndex(cfg *config.AppConfig) (domain.VectorIndex, func(), error) {
	switch cfg.VectorIndex.Type {
	case "sqlite":
		path := cfg.VectorIndex.Name + ".db"
		if cfg.VectorIndex.SQLite != nil && cfg.VectorIndex.SQLite.Path != "" {
			path = cfg.VectorIndex.SQLite.Path
		}
		st, err := sqlite.Open(path, cfg.VectorIndex.Name)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "qdrant":
		qc := cfg.VectorIndex.Qdrant
		if qc == nil {
			qc = &config.QdrantIndexConfig{}
		}
		st, err := qdrant.NewStore(qdrant.Config{
			Host:       qc.Host,
			Port:       qc.Port,
			Collection: cfg.VectorIndex.Name,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
	return nil, nil, &domain.ConfigurationError{Field: "vector_index.type", Reason: "unknown vector index " + cfg.VectorIndex.Type}
}
