package local

import (
	"context"
	"math"
	"testing"
)

func TestDimensionFixed(t *testing.T) {
	if d := New(0).Dimension(); d != DefaultDimension {
		t.Errorf("default dimension = %d, want %d", d, DefaultDimension)
	}
	if d := New(128).Dimension(); d != 128 {
		t.Errorf("dimension = %d, want 128", d)
	}
	p := New(64)
	vec, err := p.Embed(context.Background(), "accessibility guidelines for form labels")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 64 {
		t.Errorf("vector length = %d, want 64", len(vec))
	}
}

func TestDeterministic(t *testing.T) {
	p := New(96)
	a, _ := p.Embed(context.Background(), "The quick brown fox jumps over the lazy dog.")
	b, _ := p.Embed(context.Background(), "The quick brown fox jumps over the lazy dog.")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at component %d", i)
		}
	}
}

func TestUnitNorm(t *testing.T) {
	p := New(384)
	vec, err := p.Embed(context.Background(), "screen readers announce the accessible name of a control")
	if err != nil {
		t.Fatal(err)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("vector norm = %f, want 1.0", math.Sqrt(norm))
	}
}

func TestNoTokensYieldsZeroVector(t *testing.T) {
	p := New(32)
	for _, text := range []string{"", "   ", "1234 5678", "the and of"} {
		vec, err := p.Embed(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range vec {
			if v != 0 {
				t.Errorf("text %q: expected zero vector, component %d = %f", text, i, v)
				break
			}
		}
	}
}

func TestDistinctTextsDiffer(t *testing.T) {
	p := New(384)
	a, _ := p.Embed(context.Background(), "color contrast requirements")
	b, _ := p.Embed(context.Background(), "keyboard navigation order")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestRemoteFlag(t *testing.T) {
	if New(0).Remote() {
		t.Error("local provider must not report itself as remote")
	}
}
