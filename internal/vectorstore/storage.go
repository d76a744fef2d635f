// Package vectorstore holds the vector index adapters and the similarity
// scoring shared by the local ones. The adapters satisfy
// domain.VectorIndex: memory for tests and small corpora, sqlite for a
// durable single-file index, qdrant for a dedicated vector database.
package vectorstore

import (
	"math"

	"ragpipe/internal/domain"
)

// Score computes the ranking score of candidate b against query a under the
// given metric. Scores always rank descending: for the euclidean metric the
// distance d is reported as 1/(1+d), so an exact match scores 1.0 under
// every metric (cosine and the inverted distance by definition, dot product
// for unit-normalized vectors). Vectors must have equal length.
func Score(metric domain.Metric, a, b []float32) float64 {
	switch metric {
	case domain.MetricDot:
		return dot(a, b)
	case domain.MetricEuclidean:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum))
	default: // cosine
		na := math.Sqrt(dot(a, a))
		nb := math.Sqrt(dot(b, b))
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
