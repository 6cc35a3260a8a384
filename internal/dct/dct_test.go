package dct

import (
	"math"
	"math/rand"
	"testing"
)

func TestForwardInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, n := range []int{2, 4, 8, 16} {
		b, err := NewBasis(n)
		if err != nil {
			t.Fatalf("NewBasis(%d) failed: %v", n, err)
		}

		src := make([]float64, n*n)
		for i := range src {
			src[i] = rng.Float64()*255 - 128
		}
		coef := make([]float64, n*n)
		back := make([]float64, n*n)
		b.Forward(src, coef)
		b.Inverse(coef, back)

		for i := range src {
			if math.Abs(src[i]-back[i]) > 1e-9 {
				t.Fatalf("n=%d: sample %d: expected %f, got %f", n, i, src[i], back[i])
			}
		}
	}
}

func TestForwardConstantBlock(t *testing.T) {
	b, err := NewBasis(8)
	if err != nil {
		t.Fatalf("NewBasis failed: %v", err)
	}

	src := make([]float64, 64)
	for i := range src {
		src[i] = 10
	}
	dst := make([]float64, 64)
	b.Forward(src, dst)

	// orthonormal DC of a constant block is N * value
	if math.Abs(dst[0]-80) > 1e-9 {
		t.Errorf("expected DC 80, got %f", dst[0])
	}
	for i := 1; i < 64; i++ {
		if math.Abs(dst[i]) > 1e-9 {
			t.Errorf("expected zero AC at %d, got %f", i, dst[i])
		}
	}
}

func TestNewBasisShared(t *testing.T) {
	a, _ := NewBasis(4)
	b, _ := NewBasis(4)
	if a != b {
		t.Error("expected the same basis instance for equal sizes")
	}
	if _, err := NewBasis(0); err == nil {
		t.Error("expected error for zero block size")
	}
}
