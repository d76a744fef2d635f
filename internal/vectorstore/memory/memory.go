package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"ragpipe/internal/domain"
	"ragpipe/internal/vectorstore"
)

type entry struct {
	vector []float32
	text   string
}

// Store is an in-memory brute-force vector index. Entries are keyed by id,
// so re-upserting an id overwrites the previous entry. Safe for concurrent
// use.
type Store struct {
	mu        sync.RWMutex
	created   bool
	dimension int
	metric    domain.Metric
	entries   map[string]entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) EnsureCreated(_ context.Context, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return &domain.IndexProvisionError{Index: "memory", Err: errors.New("dimension must be positive")}
	}
	if !metric.Valid() {
		return &domain.IndexProvisionError{Index: "memory", Err: errors.New("unsupported metric " + string(metric))}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		if s.dimension != dimension || s.metric != metric {
			return &domain.IndexProvisionError{Index: "memory", Err: errors.New("index already exists with a different dimension or metric")}
		}
		return nil
	}
	s.created = true
	s.dimension = dimension
	s.metric = metric
	return nil
}

func (s *Store) Upsert(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.created {
		return &domain.IndexProvisionError{Index: "memory", Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	s.entries[id] = entry{vector: stored, text: metadata["text"]}
	return nil
}

func (s *Store) Query(_ context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.created {
		return nil, &domain.IndexProvisionError{Index: "memory", Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return nil, &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	if topK <= 0 {
		return nil, &domain.ValidationError{Reason: "topK must be positive"}
	}
	results := make([]domain.QueryResult, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, domain.QueryResult{
			Text:  e.text,
			Score: float32(vectorstore.Score(s.metric, vector, e.vector)),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ domain.VectorIndex = (*Store)(nil)
