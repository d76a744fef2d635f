package domain

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid pipeline setting. Fatal until the
// configuration is corrected.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// ValidationError reports bad caller input, such as an empty query.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

// EmbeddingProviderError wraps a failure from an embedding backend. The
// caller may retry with backoff; the core itself never retries.
type EmbeddingProviderError struct {
	Provider string
	Err      error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

// DimensionMismatchError reports a vector whose length differs from the
// index dimension. It indicates provider/index configuration drift and is
// never retryable; vectors are never truncated or padded.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension %d does not match index dimension %d", e.Got, e.Want)
}

// IndexProvisionError wraps a failure creating or opening a vector index.
type IndexProvisionError struct {
	Index string
	Err   error
}

func (e *IndexProvisionError) Error() string {
	return fmt.Sprintf("provisioning index %q: %v", e.Index, e.Err)
}

func (e *IndexProvisionError) Unwrap() error { return e.Err }

// IndexingError reports a failed indexing run. Chunk is the zero-based
// index of the chunk that failed and Indexed the number already upserted,
// so a caller can resume from the failure point. Entries upserted before
// the failure are kept.
type IndexingError struct {
	Chunk   int
	Indexed int
	Err     error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing aborted at chunk %d after %d upserts: %v", e.Chunk, e.Indexed, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may reasonably retry the operation
// that produced err. Configuration, validation and dimension errors are
// permanent; provider and provisioning failures are typically transient.
// An IndexingError is classified by its cause.
func Retryable(err error) bool {
	var (
		cfgErr *ConfigurationError
		valErr *ValidationError
		dimErr *DimensionMismatchError
		idxErr *IndexingError
	)
	switch {
	case errors.As(err, &dimErr), errors.As(err, &cfgErr), errors.As(err, &valErr):
		return false
	case errors.As(err, &idxErr):
		return Retryable(idxErr.Err)
	}
	var provErr *EmbeddingProviderError
	var provisionErr *IndexProvisionError
	return errors.As(err, &provErr) || errors.As(err, &provisionErr)
}
