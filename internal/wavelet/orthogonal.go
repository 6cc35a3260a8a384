package wavelet

import "math"

// orthogonal is a periodized orthonormal filter bank defined by its low-pass
// analysis filter. The high-pass filter is the quadrature mirror
// g[n] = (-1)^n h[L-1-n] and synthesis is the transpose of analysis.
type orthogonal struct {
	h []float64
	g []float64
}

func newOrthogonal(h []float64) *orthogonal {
	g := make([]float64, len(h))
	for n := range h {
		g[n] = h[len(h)-1-n]
		if n%2 == 1 {
			g[n] = -g[n]
		}
	}
	return &orthogonal{h: h, g: g}
}

func (o *orthogonal) analyze(x, lo, hi []float64) {
	n := len(x)
	for k := 0; k < n/2; k++ {
		var a, d float64
		for i := range o.h {
			v := x[(2*k+i)%n]
			a += o.h[i] * v
			d += o.g[i] * v
		}
		lo[k] = a
		hi[k] = d
	}
}

func (o *orthogonal) synthesize(lo, hi, x []float64) {
	n := len(x)
	for i := range x {
		x[i] = 0
	}
	for k := range lo {
		for i := range o.h {
			x[(2*k+i)%n] += o.h[i]*lo[k] + o.g[i]*hi[k]
		}
	}
}

// Haar returns the Haar (db1) transform. Coefficients follow
// a = (x0+x1)/sqrt2, d = (x0-x1)/sqrt2.
func Haar() Transform {
	c := 1 / math.Sqrt2
	return &separable{name: "haar", bank: newOrthogonal([]float64{c, c})}
}

// Daubechies2 returns the periodized four-tap Daubechies transform
func Daubechies2() Transform {
	s3 := math.Sqrt(3)
	norm := 4 * math.Sqrt2
	return &separable{name: "db2", bank: newOrthogonal([]float64{
		(1 + s3) / norm,
		(3 + s3) / norm,
		(3 - s3) / norm,
		(1 - s3) / norm,
	})}
}
