// Package pipeline wires the chunker, embedding provider and vector index
// into the two core operations: populating an index from a corpus and
// answering a query with ranked passages.
package pipeline

import (
	"context"
	"strconv"

	"golang.org/x/time/rate"

	"ragpipe/internal/chunker"
	"ragpipe/internal/domain"
)

// Limiter gates remote embedding calls. *rate.Limiter satisfies it; tests
// substitute fakes to avoid wall-clock delays.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Indexer populates a vector index from a text corpus. All collaborators
// are injected so callers and tests control the backends.
type Indexer struct {
	chunker  *chunker.WindowChunker
	provider domain.EmbeddingProvider
	index    domain.VectorIndex
	metric   domain.Metric
	limiter  Limiter
}

// NewIndexer builds an indexer. limiter may be nil to disable throttling;
// it is only consulted for remote providers either way.
func NewIndexer(ch *chunker.WindowChunker, provider domain.EmbeddingProvider, index domain.VectorIndex, metric domain.Metric, limiter Limiter) *Indexer {
	return &Indexer{chunker: ch, provider: provider, index: index, metric: metric, limiter: limiter}
}

// NewDelayLimiter converts the classic fixed delay between remote calls
// into a token bucket admitting one call per delaySeconds.
func NewDelayLimiter(delaySeconds float64) Limiter {
	if delaySeconds <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(1/delaySeconds), 1)
}

// EnsureIndex provisions the vector index with the provider's dimension and
// the configured metric. Idempotent; must succeed before IndexCorpus.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	return ix.index.EnsureCreated(ctx, ix.provider.Dimension(), ix.metric)
}

// IndexCorpus chunks text and embeds and upserts each chunk in order. It
// returns the number of chunks upserted. source namespaces the entry ids so
// corpora indexed into one index never collide; re-indexing the same source
// overwrites its own entries. On failure the run stops and the error reports
// the failing chunk so the caller can resume; entries already upserted are
// kept. Cancellation is honored before each chunk.
func (ix *Indexer) IndexCorpus(ctx context.Context, source, text string) (int, error) {
	chunks, err := ix.chunker.Chunk(text)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return indexed, &domain.IndexingError{Chunk: i, Indexed: indexed, Err: err}
		}
		if ix.limiter != nil && ix.provider.Remote() {
			if err := ix.limiter.Wait(ctx); err != nil {
				return indexed, &domain.IndexingError{Chunk: i, Indexed: indexed, Err: err}
			}
		}
		vec, err := ix.provider.Embed(ctx, ch.Text)
		if err != nil {
			return indexed, &domain.IndexingError{Chunk: i, Indexed: indexed, Err: err}
		}
		id := strconv.Itoa(ch.Index + 1)
		if source != "" {
			id = source + "/" + id
		}
		if err := ix.index.Upsert(ctx, id, vec, map[string]string{"text": ch.Text}); err != nil {
			return indexed, &domain.IndexingError{Chunk: i, Indexed: indexed, Err: err}
		}
		indexed++
	}
	return indexed, nil
}
