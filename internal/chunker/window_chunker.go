package chunker

import (
	"strconv"

	"ragpipe/internal/domain"
)

// defaultBreakWindow bounds how far back from a hard cut the chunker looks
// for a natural break before giving up and cutting mid-text.
const defaultBreakWindow = 100

// WindowChunker splits text into fixed-size overlapping windows, preferring
// paragraph, sentence and word boundaries near each cut. Stitching the
// chunks back together with the overlap dropped reproduces the input
// exactly.
type WindowChunker struct {
	size        int
	overlap     int
	breakWindow int
}

// NewWindowChunker validates the window geometry. size is the window length
// in runes, overlap the number of runes shared between adjacent chunks.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, &domain.ConfigurationError{Field: "chunk_size", Reason: "must be positive, got " + strconv.Itoa(size)}
	}
	if overlap < 0 {
		return nil, &domain.ConfigurationError{Field: "chunk_overlap", Reason: "must not be negative, got " + strconv.Itoa(overlap)}
	}
	if overlap >= size {
		return nil, &domain.ConfigurationError{Field: "chunk_overlap", Reason: "must be smaller than chunk_size"}
	}
	// The search window must never push a cut back into the overlap region,
	// otherwise the chunker would stop advancing.
	bw := defaultBreakWindow
	if max := size - overlap - 1; bw > max {
		bw = max
	}
	return &WindowChunker{size: size, overlap: overlap, breakWindow: bw}, nil
}

// Chunk produces consecutive windows over text. Every window after the first
// starts exactly overlap runes before the previous window's end; the final
// window may be shorter than size. Empty input yields no chunks.
func (c *WindowChunker) Chunk(text string) ([]domain.Chunk, error) {
	if text == "" {
		return nil, nil
	}
	runes := []rune(text)
	var chunks []domain.Chunk
	start := 0
	for idx := 0; ; idx++ {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.breakPoint(runes, start, end)
		}
		chunks = append(chunks, domain.Chunk{Index: idx, Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
		start = end - c.overlap
	}
	return chunks, nil
}

// breakPoint moves the cut at end back to just after the nearest natural
// break, searching at most breakWindow runes. Preference order: paragraph
// break, sentence end, any whitespace. Falls back to the hard cut.
func (c *WindowChunker) breakPoint(runes []rune, start, end int) int {
	limit := end - c.breakWindow
	if limit < start+1 {
		limit = start + 1
	}
	sentence, space := -1, -1
	for i := end - 1; i >= limit; i-- {
		switch runes[i] {
		case '\n':
			// A sentence end found nearer to the hard cut wins over a
			// paragraph break further back.
			if sentence > 0 {
				return sentence
			}
			return i + 1
		case '.', '!', '?':
			// Only treat as a sentence end when followed by whitespace.
			if sentence < 0 && i+1 < end && isSpace(runes[i+1]) {
				sentence = i + 2
			}
		case ' ', '\t':
			if space < 0 {
				space = i + 1
			}
		}
	}
	if sentence > 0 {
		return sentence
	}
	if space > 0 {
		return space
	}
	return end
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
