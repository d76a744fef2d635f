package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ragpipe/internal/domain"
)

// stitch reverses chunking: the first chunk verbatim, then every later
// chunk with its first overlap runes dropped.
func stitch(chunks []domain.Chunk, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch.Text)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func sampleText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		fmt.Fprintf(&b, "word%04d ", i)
		if i%12 == 11 {
			b.WriteString("End of sentence. ")
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestChunkRoundtrip(t *testing.T) {
	cases := []struct {
		name          string
		text          string
		size, overlap int
	}{
		{"plain words", sampleText(300), 200, 40},
		{"no overlap", sampleText(100), 80, 0},
		{"no break points", strings.Repeat("x", 2100), 1000, 200},
		{"paragraphs", strings.Repeat("A short paragraph of text.\n\n", 60), 150, 30},
		{"multibyte runes", strings.Repeat("héllo wörld über ", 120), 90, 20},
		{"shorter than size", "tiny", 100, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewWindowChunker(tc.size, tc.overlap)
			if err != nil {
				t.Fatalf("NewWindowChunker: %v", err)
			}
			chunks, err := c.Chunk(tc.text)
			if err != nil {
				t.Fatalf("Chunk: %v", err)
			}
			if got := stitch(chunks, tc.overlap); got != tc.text {
				t.Errorf("stitched text differs from input (got %d runes, want %d)", len([]rune(got)), len([]rune(tc.text)))
			}
			for i, ch := range chunks {
				if ch.Index != i {
					t.Errorf("chunk %d has Index %d", i, ch.Index)
				}
				if n := len([]rune(ch.Text)); n > tc.size {
					t.Errorf("chunk %d has %d runes, exceeds size %d", i, n, tc.size)
				}
			}
		})
	}
}

func TestChunkOverlapInvariant(t *testing.T) {
	c, err := NewWindowChunker(120, 30)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := c.Chunk(sampleText(400))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i].Text)
		next := []rune(chunks[i+1].Text)
		tail := string(cur[len(cur)-30:])
		head := string(next[:30])
		if tail != head {
			t.Errorf("chunks %d/%d: tail %q != head %q", i, i+1, tail, head)
		}
	}
}

func TestChunkScenario2100(t *testing.T) {
	// 2100 runes with no break points force hard cuts at exactly
	// size boundaries: 1000, 1000, 500 with 200 runes of overlap.
	c, err := NewWindowChunker(1000, 200)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := c.Chunk(strings.Repeat("x", 2100))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{1000, 1000, 500} {
		if got := len(chunks[i].Text); got != want {
			t.Errorf("chunk %d length = %d, want %d", i, got, want)
		}
	}
}

func TestChunkPrefersSentenceBreaks(t *testing.T) {
	text := strings.Repeat("One sentence here. ", 30)
	c, err := NewWindowChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}
	for i, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(ch.Text, ". ") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, ch.Text)
		}
	}
}

func TestChunkEmptyText(t *testing.T) {
	c, err := NewWindowChunker(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := c.Chunk("")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkerConfigValidation(t *testing.T) {
	cases := []struct {
		size, overlap int
	}{
		{0, 0},
		{-5, 0},
		{100, 100},
		{100, 250},
		{100, -1},
	}
	for _, tc := range cases {
		_, err := NewWindowChunker(tc.size, tc.overlap)
		var cfgErr *domain.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("size=%d overlap=%d: expected ConfigurationError, got %v", tc.size, tc.overlap, err)
		}
	}
}
