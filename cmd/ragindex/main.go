package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"ragpipe/internal/chunker"
	"ragpipe/internal/config"
	"ragpipe/internal/domain"
	"ragpipe/internal/embedding/local"
	"ragpipe/internal/embedding/ollama"
	"ragpipe/internal/embedding/openai"
	"ragpipe/internal/pipeline"
	"ragpipe/internal/vectorstore/memory"
	"ragpipe/internal/vectorstore/qdrant"
	"ragpipe/internal/vectorstore/sqlite"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: ragindex [--config=config.yaml] corpus1.txt [corpus2.txt ...]")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("failed to build embedding provider: %v", err)
	}
	index, closeIndex, err := buildIndex(cfg)
	if err != nil {
		log.Fatalf("failed to build vector index: %v", err)
	}
	defer closeIndex()

	ch, err := chunker.NewWindowChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunking configuration: %v", err)
	}
	indexer := pipeline.NewIndexer(ch, provider, index,
		domain.Metric(cfg.VectorIndex.Metric),
		pipeline.NewDelayLimiter(cfg.Pipeline.RateLimitDelay))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := indexer.EnsureIndex(ctx); err != nil {
		log.Fatalf("failed to provision index %q: %v", cfg.VectorIndex.Name, err)
	}
	color.Green("index %q ready (dimension=%d metric=%s provider=%s)",
		cfg.VectorIndex.Name, provider.Dimension(), cfg.VectorIndex.Metric, provider.Name())

	total := 0
	start := time.Now()
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read %s: %v", path, err)
		}
		count, err := indexer.IndexCorpus(ctx, filepath.Base(path), string(data))
		total += count
		if err != nil {
			var ixErr *domain.IndexingError
			if errors.As(err, &ixErr) {
				color.Red("%s: indexed %d chunks, then failed at chunk %d: %v", path, ixErr.Indexed, ixErr.Chunk, ixErr.Err)
				color.Yellow("entries already stored are kept; rerun to resume from chunk %d", ixErr.Chunk)
			} else {
				color.Red("%s: %v", path, err)
			}
			os.Exit(1)
		}
		color.Cyan("%s: indexed %d chunks", path, count)
	}
	color.Green("stored %d chunks in index %q in %s", total, cfg.VectorIndex.Name, time.Since(start).Round(time.Millisecond))
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
	case "memory":
		return memory.NewStore(), func() {}, nil
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
