package pipeline

import (
	"context"
	"strings"

	"ragpipe/internal/domain"
)

// Retriever answers free-text queries with passages ranked by the vector
// index. It must be configured with the same provider configuration that
// populated the index; the ranking itself is entirely the index's.
type Retriever struct {
	provider   domain.EmbeddingProvider
	index      domain.VectorIndex
	maxResults int
}

// NewRetriever builds a retriever. maxResults is the default top-k applied
// when a call does not supply one.
func NewRetriever(provider domain.EmbeddingProvider, index domain.VectorIndex, maxResults int) (*Retriever, error) {
	if maxResults <= 0 {
		return nil, &domain.ConfigurationError{Field: "max_results", Reason: "must be positive"}
	}
	return &Retriever{provider: provider, index: index, maxResults: maxResults}, nil
}

// Retrieve embeds query and returns at most topK passages ranked descending
// by score. topK <= 0 selects the configured default. A blank query is
// rejected; a retrieval failure returns no partial results.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Reason: "query must be a non-empty string"}
	}
	if topK <= 0 {
		topK = r.maxResults
	}
	vec, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.index.Query(ctx, vec, topK)
}
