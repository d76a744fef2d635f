package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"ragpipe/internal/domain"
)

// Store is a vector index backed by a Qdrant collection over gRPC. Point
// ids are name-based UUIDs derived from the entry id, so upserts are
// idempotent and last-write-wins per entry.
type Store struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	collection  string
	dimension   int
	metric      domain.Metric
}

// Config contains connection details for a Qdrant server.
type Config struct {
	Host       string
	Port       int
	Collection string
}

// NewStore dials the Qdrant gRPC endpoint. The connection is lazy; the
// first RPC surfaces connectivity problems.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, &domain.ConfigurationError{Field: "vector_index.qdrant.collection", Reason: "must not be empty"}
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	conn, err := grpc.NewClient(
		fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, &domain.IndexProvisionError{Index: cfg.Collection, Err: err}
	}
	return &Store{
		conn:        conn,
		collections: qdrantclient.NewCollectionsClient(conn),
		points:      qdrantclient.NewPointsClient(conn),
		collection:  cfg.Collection,
	}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) EnsureCreated(ctx context.Context, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return &domain.IndexProvisionError{Index: s.collection, Err: errors.New("dimension must be positive")}
	}
	distance, err := mapMetric(metric)
	if err != nil {
		return &domain.IndexProvisionError{Index: s.collection, Err: err}
	}
	list, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return &domain.IndexProvisionError{Index: s.collection, Err: err}
	}
	exists := false
	for _, col := range list.GetCollections() {
		if col.GetName() == s.collection {
			exists = true
			break
		}
	}
	if exists {
		info, err := s.collections.Get(ctx, &qdrantclient.GetCollectionInfoRequest{CollectionName: s.collection})
		if err != nil {
			return &domain.IndexProvisionError{Index: s.collection, Err: err}
		}
		// Named-vector collections have no single params block; those are
		// outside what this store provisions, so only the plain layout is
		// compared.
		params := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams()
		if params != nil && (params.GetSize() != uint64(dimension) || params.GetDistance() != distance) {
			return &domain.IndexProvisionError{
				Index: s.collection,
				Err: fmt.Errorf("collection exists with size=%d distance=%s, requested size=%d distance=%s",
					params.GetSize(), params.GetDistance(), dimension, distance),
			}
		}
	} else {
		_, err = s.collections.Create(ctx, &qdrantclient.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &qdrantclient.VectorsConfig{
				Config: &qdrantclient.VectorsConfig_Params{
					Params: &qdrantclient.VectorParams{
						Size:     uint64(dimension),
						Distance: distance,
					},
				},
			},
		})
		if err != nil {
			return &domain.IndexProvisionError{Index: s.collection, Err: err}
		}
	}
	s.dimension = dimension
	s.metric = metric
	return nil
}

func (s *Store) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	if s.dimension == 0 {
		return &domain.IndexProvisionError{Index: s.collection, Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	payload := make(map[string]*qdrantclient.Value, len(metadata))
	for k, v := range metadata {
		payload[k] = &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: v}}
	}
	wait := true
	_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrantclient.PointStruct{{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: s.pointID(id)},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: vector},
				},
			},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert %q into %q: %w", id, s.collection, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	if s.dimension == 0 {
		return nil, &domain.IndexProvisionError{Index: s.collection, Err: errors.New("index not created")}
	}
	if len(vector) != s.dimension {
		return nil, &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	if topK <= 0 {
		return nil, &domain.ValidationError{Reason: "topK must be positive"}
	}
	resp, err := s.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Include{
				Include: &qdrantclient.PayloadIncludeSelector{Fields: []string{"text"}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", s.collection, err)
	}
	results := make([]domain.QueryResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		text := ""
		if v, ok := point.GetPayload()["text"]; ok {
			text = v.GetStringValue()
		}
		results = append(results, domain.QueryResult{Text: text, Score: point.GetScore()})
	}
	return results, nil
}

// pointID maps an entry id to a stable UUID, which Qdrant requires as the
// point identifier.
func (s *Store) pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("qdrant://"+s.collection+"/"+id)).String()
}

func mapMetric(metric domain.Metric) (qdrantclient.Distance, error) {
	switch metric {
	case domain.MetricCosine:
		return qdrantclient.Distance_Cosine, nil
	case domain.MetricDot:
		return qdrantclient.Distance_Dot, nil
	case domain.MetricEuclidean:
		return qdrantclient.Distance_Euclid, nil
	}
	return qdrantclient.Distance_UnknownDistance, errors.New("unsupported metric " + string(metric))
}

var _ domain.VectorIndex = (*Store)(nil)
