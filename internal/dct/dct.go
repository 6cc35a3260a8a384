// Package dct implements the orthonormal 2D DCT-II and its inverse on
// square NxN blocks.
package dct

import (
	"fmt"
	"math"
	"sync"
)

// Basis holds the precomputed scaled cosines for one block size.
// table[i*N+k] = C(k) * cos((2i+1)k*pi/(2N)) with C(0) = sqrt(1/N) and
// C(k) = sqrt(2/N) for k>0.
type Basis struct {
	N     int
	table []float64
}

var bases sync.Map // int -> *Basis

// NewBasis returns the shared Basis for n x n blocks
func NewBasis(n int) (*Basis, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dct: invalid block size %d", n)
	}
	if b, ok := bases.Load(n); ok {
		return b.(*Basis), nil
	}

	table := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			c := math.Sqrt(2.0 / float64(n))
			if k == 0 {
				c = math.Sqrt(1.0 / float64(n))
			}
			table[i*n+k] = c * math.Cos(float64(2*i+1)*float64(k)*math.Pi/float64(2*n))
		}
	}

	b, _ := bases.LoadOrStore(n, &Basis{N: n, table: table})
	return b.(*Basis), nil
}

// Forward performs a 2D DCT on an NxN block.
// src and dst are row-major with N*N elements; dst[rowFreq*N+colFreq].
func (b *Basis) Forward(src, dst []float64) {
	n := b.N
	temp := make([]float64, n*n)

	// rows
	for row := 0; row < n; row++ {
		for freq := 0; freq < n; freq++ {
			sum := 0.0
			for col := 0; col < n; col++ {
				sum += src[row*n+col] * b.table[col*n+freq]
			}
			temp[row*n+freq] = sum
		}
	}

	// columns
	for colFreq := 0; colFreq < n; colFreq++ {
		for rowFreq := 0; rowFreq < n; rowFreq++ {
			sum := 0.0
			for row := 0; row < n; row++ {
				sum += temp[row*n+colFreq] * b.table[row*n+rowFreq]
			}
			dst[rowFreq*n+colFreq] = sum
		}
	}
}

// Inverse performs a 2D inverse DCT on an NxN block laid out as Forward
// produces it
func (b *Basis) Inverse(src, dst []float64) {
	n := b.N
	temp := make([]float64, n*n)

	// columns
	for colFreq := 0; colFreq < n; colFreq++ {
		for row := 0; row < n; row++ {
			sum := 0.0
			for rowFreq := 0; rowFreq < n; rowFreq++ {
				sum += src[rowFreq*n+colFreq] * b.table[row*n+rowFreq]
			}
			temp[row*n+colFreq] = sum
		}
	}

	// rows
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			sum := 0.0
			for colFreq := 0; colFreq < n; colFreq++ {
				sum += temp[row*n+colFreq] * b.table[col*n+colFreq]
			}
			dst[row*n+col] = sum
		}
	}
}
