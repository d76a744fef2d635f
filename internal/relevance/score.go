// Package relevance aggregates per-match similarity scores into a single
// confidence signal callers use to gate low-quality retrievals.
package relevance

import "ragpipe/internal/domain"

// AverageScore returns the arithmetic mean of the result scores. An empty
// result set yields 0.0, a neutral low-confidence signal rather than an
// error: retrieving nothing is a valid outcome.
func AverageScore(results []domain.QueryResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range results {
		sum += float64(r.Score)
	}
	return sum / float64(len(results))
}
