package domain

import "context"

// Chunk is a bounded contiguous slice of source text prepared for embedding.
// Index records its position within the source document.
type Chunk struct {
	Index int
	Text  string
}

// QueryResult is a single ranked passage returned by a vector index query.
type QueryResult struct {
	Text  string
	Score float32
}

// Metric selects the similarity function a vector index ranks by. It is
// chosen when the index is provisioned and fixed thereafter.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricDot       Metric = "dot"
	MetricEuclidean Metric = "euclidean"
)

// Valid reports whether m names a supported similarity metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricCosine, MetricDot, MetricEuclidean:
		return true
	}
	return false
}

// EmbeddingProvider converts free text into a fixed-dimension vector.
// Dimension must be stable before first use so the index can be provisioned
// consistently; mixing vectors from differently configured providers in one
// index makes distances meaningless and is a caller error.
type EmbeddingProvider interface {
	Name() string
	Dimension() int
	// Remote reports whether Embed calls leave the process. Remote
	// providers are subject to rate limiting during indexing.
	Remote() bool
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex persists embedding vectors and supports similarity search.
// Mutations are durable in the backing store; the core keeps no local cache.
type VectorIndex interface {
	// EnsureCreated provisions the index if absent. Calling it again with
	// the same dimension and metric is a no-op.
	EnsureCreated(ctx context.Context, dimension int, metric Metric) error
	// Upsert inserts or overwrites one entry keyed by id (last-write-wins).
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	// Query returns up to topK entries ranked descending by score. Fewer
	// than topK stored entries yields fewer results, never padding.
	// topK must be positive; defaulting belongs to the caller.
	Query(ctx context.Context, vector []float32, topK int) ([]QueryResult, error)
}
