package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"ragpipe/internal/domain"
)

// Provider embeds text through an Ollama server. Ollama runs on the local
// machine in most deployments but is still an external process with its own
// quota characteristics, so it counts as a remote provider.
type Provider struct {
	client *api.Client
	model  string
	dim    int
}

// Config configures the Ollama embeddings provider.
type Config struct {
	Host      string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// New creates the provider. Dimension must be known up front; it defaults
// to 768 for the default nomic-embed-text model.
func New(cfg Config) (*Provider, error) {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	dim := cfg.Dimension
	if dim == 0 && cfg.Model == "nomic-embed-text" {
		dim = 768
	}
	if dim <= 0 {
		return nil, &domain.ConfigurationError{Field: "embedder.ollama.dimension", Reason: "unknown for model " + cfg.Model + ", set it explicitly"}
	}
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "embedder.ollama.host", Reason: err.Error()}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		client: api.NewClient(base, &http.Client{Timeout: timeout}),
		model:  cfg.Model,
		dim:    dim,
	}, nil
}

func (p *Provider) Name() string   { return "ollama/" + p.model }
func (p *Provider) Dimension() int { return p.dim }
func (p *Provider) Remote() bool   { return true }

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  p.model,
		Prompt: text,
	})
	if err != nil {
		return nil, &domain.EmbeddingProviderError{Provider: p.Name(), Err: err}
	}
	if len(resp.Embedding) != p.dim {
		return nil, &domain.EmbeddingProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("model returned %d-dimensional vector, expected %d", len(resp.Embedding), p.dim),
		}
	}
	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
