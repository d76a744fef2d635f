package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"configuration", &ConfigurationError{Field: "chunk_size", Reason: "x"}, false},
		{"validation", &ValidationError{Reason: "empty"}, false},
		{"dimension mismatch", &DimensionMismatchError{Want: 3, Got: 4}, false},
		{"provider", &EmbeddingProviderError{Provider: "p", Err: errors.New("503")}, true},
		{"provision", &IndexProvisionError{Index: "i", Err: errors.New("conn refused")}, true},
		{"indexing over provider", &IndexingError{Chunk: 2, Err: &EmbeddingProviderError{Provider: "p", Err: errors.New("x")}}, true},
		{"indexing over mismatch", &IndexingError{Chunk: 2, Err: &DimensionMismatchError{Want: 3, Got: 4}}, false},
		{"wrapped provider", fmt.Errorf("outer: %w", &EmbeddingProviderError{Provider: "p", Err: errors.New("x")}), true},
		{"plain error", errors.New("whatever"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Retryable(tc.err); got != tc.want {
				t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIndexingErrorUnwraps(t *testing.T) {
	cause := &EmbeddingProviderError{Provider: "p", Err: errors.New("boom")}
	err := error(&IndexingError{Chunk: 7, Indexed: 7, Err: cause})
	var provErr *EmbeddingProviderError
	if !errors.As(err, &provErr) {
		t.Fatal("IndexingError must unwrap to its cause")
	}
}
