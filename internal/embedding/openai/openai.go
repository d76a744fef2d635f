package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragpipe/internal/domain"
)

// Provider embeds text through the OpenAI embeddings API (or any
// API-compatible endpoint). It performs no retries itself; transient
// failures surface to the caller for backoff.
type Provider struct {
	client *openai.Client
	model  string
	dim    int
}

// Config configures the OpenAI embeddings provider. The API key is read
// from the environment variable named by APIKeyEnv, never stored in config.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// New creates the provider. The embedding dimension is fixed here, derived
// from the model when not configured explicitly.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, &domain.ConfigurationError{Field: "embedder.openai.api_key_env", Reason: "environment variable " + cfg.APIKeyEnv + " is not set"}
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.AdaEmbeddingV2)
	}
	dim := cfg.Dimension
	if dim == 0 {
		dim = modelDimension(cfg.Model)
	}
	if dim <= 0 {
		return nil, &domain.ConfigurationError{Field: "embedder.openai.dimension", Reason: "unknown for model " + cfg.Model + ", set it explicitly"}
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		dim:    dim,
	}, nil
}

func (p *Provider) Name() string   { return "openai/" + p.model }
func (p *Provider) Dimension() int { return p.dim }
func (p *Provider) Remote() bool   { return true }

// Embed returns the embedding vector for text. API and network failures are
// wrapped as EmbeddingProviderError so the caller can decide on retries.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, &domain.EmbeddingProviderError{Provider: p.Name(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &domain.EmbeddingProviderError{Provider: p.Name(), Err: errors.New("no embedding data in response")}
	}
	vec := resp.Data[0].Embedding
	if len(vec) != p.dim {
		return nil, &domain.EmbeddingProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("model returned %d-dimensional vector, expected %d", len(vec), p.dim),
		}
	}
	return vec, nil
}

func modelDimension(model string) int {
	switch model {
	case string(openai.AdaEmbeddingV2), string(openai.SmallEmbedding3):
		return 1536
	case string(openai.LargeEmbedding3):
		return 3072
	}
	return 0
}
