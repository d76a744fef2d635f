package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"ragpipe/internal/domain"
	"ragpipe/internal/vectorstore"
)

// Store is a durable vector index backed by a single SQLite file. Vectors
// are stored as little-endian float32 BLOBs and scored with a brute-force
// scan, which is adequate for corpora in the tens of thousands of chunks.
type Store struct {
	db        *sql.DB
	name      string
	dimension int
	metric    domain.Metric
}

// Open opens (creating if needed) the database at path. name identifies the
// index; one database holds one index.
func Open(path, name string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.IndexProvisionError{Index: name, Err: err}
	}
	return &Store{db: db, name: name}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EnsureCreated(ctx context.Context, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return &domain.IndexProvisionError{Index: s.name, Err: errors.New("dimension must be positive")}
	}
	if !metric.Valid() {
		return &domain.IndexProvisionError{Index: s.name, Err: errors.New("unsupported metric " + string(metric))}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS index_meta (
    name      TEXT PRIMARY KEY,
    dimension INTEGER NOT NULL,
    metric    TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS entries (
    id     TEXT PRIMARY KEY,
    vector BLOB NOT NULL,
    text   TEXT NOT NULL
);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &domain.IndexProvisionError{Index: s.name, Err: err}
		}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO index_meta(name, dimension, metric) VALUES(?, ?, ?)`,
		s.name, dimension, string(metric)); err != nil {
		return &domain.IndexProvisionError{Index: s.name, Err: err}
	}
	var storedDim int
	var storedMetric string
	err := s.db.QueryRowContext(ctx,
		`SELECT dimension, metric FROM index_meta WHERE name = ?`, s.name).
		Scan(&storedDim, &storedMetric)
	if err != nil {
		return &domain.IndexProvisionError{Index: s.name, Err: err}
	}
	if storedDim != dimension || storedMetric != string(metric) {
		return &domain.IndexProvisionError{
			Index: s.name,
			Err:   fmt.Errorf("index exists with dimension=%d metric=%s, requested dimension=%d metric=%s", storedDim, storedMetric, dimension, metric),
		}
	}
	s.dimension = dimension
	s.metric = metric
	return nil
}

func (s *Store) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	if s.dimension == 0 {
		return &domain.IndexProvisionError{Index: s.name, Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries(id, vector, text) VALUES(?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET vector = excluded.vector, text = excluded.text`,
		id, encodeVector(vector), metadata["text"])
	if err != nil {
		return fmt.Errorf("upsert %q: %w", id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	if s.dimension == 0 {
		return nil, &domain.IndexProvisionError{Index: s.name, Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return nil, &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	if topK <= 0 {
		return nil, &domain.ValidationError{Reason: "topK must be positive"}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT vector, text FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("query index %q: %w", s.name, err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		var blob []byte
		var text string
		if err := rows.Scan(&blob, &text); err != nil {
			return nil, err
		}
		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", s.name, err)
		}
		if len(stored) != s.dimension {
			return nil, fmt.Errorf("index %q: stored vector has %d values, want %d", s.name, len(stored), s.dimension)
		}
		results = append(results, domain.QueryResult{
			Text:  text,
			Score: float32(vectorstore.Score(s.metric, vector, stored)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func encodeVector(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

var _ domain.VectorIndex = (*Store)(nil)
