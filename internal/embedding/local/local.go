package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"ragpipe/internal/domain"
)

// DefaultDimension matches the compact sentence-embedding models commonly
// used for in-process embedding.
const DefaultDimension = 384

// Provider is an in-process embedder based on signed feature hashing of
// term frequencies. It needs no corpus preparation, produces the same
// vector for the same text on every call, and its dimension is fixed at
// construction, so it satisfies the same contract as the remote providers.
// It trades semantic quality for zero external dependencies.
type Provider struct {
	dim          int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// New creates a local provider with the given dimension, or
// DefaultDimension when dimension is not positive.
func New(dimension int) *Provider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Provider{
		dim:          dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (p *Provider) Name() string   { return "local/hashing" }
func (p *Provider) Dimension() int { return p.dim }
func (p *Provider) Remote() bool   { return false }

// Embed hashes each token into one of dim buckets with a sign bit to
// reduce collision bias, accumulates term frequencies and L2-normalizes.
// Text with no usable tokens embeds to the zero vector.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dim)
	for _, tok := range p.tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % uint32(p.dim))
		if sum&0x80000000 != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func (p *Provider) tokenize(text string) []string {
	raw := p.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := p.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ domain.EmbeddingProvider = (*Provider)(nil)
