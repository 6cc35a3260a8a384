package wavelet

import (
	"fmt"

	"github.com/tuomas-lb/wavestego/internal/dct"
	"github.com/tuomas-lb/wavestego/internal/plane"
)

// BlockDCT transforms non-overlapping 2^level x 2^level blocks with an
// orthonormal DCT and regroups every frequency into its own plane, so the
// result has the same shape as a wavelet decomposition: frequency (0,0) is
// the approximation, (1,0) "da", (0,1) "ad" and (1,1) "dd". The remaining
// frequencies travel in Residual. Finer detail levels are empty.
type BlockDCT struct{}

func (BlockDCT) Name() string { return "dct" }

// band returns the index of frequency (rowFreq, colFreq) in an NxN block
func band(n, rowFreq, colFreq int) int {
	return rowFreq*n + colFreq
}

var labelledBands = map[string][2]int{
	Horizontal: {1, 0},
	Vertical:   {0, 1},
	Diagonal:   {1, 1},
}

func isLabelled(n, idx int) bool {
	if idx == 0 {
		return true
	}
	for _, f := range labelledBands {
		if band(n, f[0], f[1]) == idx {
			return true
		}
	}
	return false
}

// Forward implements Transform
func (BlockDCT) Forward(p *plane.Plane, level int) (*Decomposition, error) {
	if err := checkDims(p, level); err != nil {
		return nil, err
	}
	n := 1 << level
	basis, err := dct.NewBasis(n)
	if err != nil {
		return nil, err
	}

	bw, bh := p.Width/n, p.Height/n
	bands := make([]*plane.Plane, n*n)
	for i := range bands {
		bands[i] = plane.New(bw, bh)
	}

	src := make([]float64, n*n)
	coef := make([]float64, n*n)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					src[y*n+x] = p.At(bx*n+x, by*n+y)
				}
			}
			basis.Forward(src, coef)
			for i, c := range coef {
				bands[i].Set(bx, by, c)
			}
		}
	}

	d := &Decomposition{
		Approx:  bands[0],
		Details: make([]Level, level),
	}
	for l := 0; l < level-1; l++ {
		d.Details[l] = Level{}
	}
	coarsest := Level{}
	for label, f := range labelledBands {
		coarsest[label] = bands[band(n, f[0], f[1])]
	}
	d.Details[level-1] = coarsest
	for i := range bands {
		if !isLabelled(n, i) {
			d.Residual = append(d.Residual, bands[i])
		}
	}
	return d, nil
}

// Inverse implements Transform
func (BlockDCT) Inverse(d *Decomposition) (*plane.Plane, error) {
	if d == nil || d.Approx == nil || len(d.Details) == 0 {
		return nil, fmt.Errorf("%w: missing approximation or details", ErrIncomplete)
	}
	level := len(d.Details)
	n := 1 << level
	basis, err := dct.NewBasis(n)
	if err != nil {
		return nil, err
	}
	if len(d.Residual) != n*n-4 {
		return nil, fmt.Errorf("%w: %d residual bands, want %d", ErrIncomplete, len(d.Residual), n*n-4)
	}

	bands := make([]*plane.Plane, n*n)
	bands[0] = d.Approx
	coarsest := d.Coarsest()
	for label, f := range labelledBands {
		q, ok := coarsest[label]
		if !ok {
			return nil, fmt.Errorf("%w: plane %q", ErrIncomplete, label)
		}
		bands[band(n, f[0], f[1])] = q
	}
	r := 0
	for i := range bands {
		if !isLabelled(n, i) {
			bands[i] = d.Residual[r]
			r++
		}
	}

	bw, bh := d.Approx.Width, d.Approx.Height
	for _, b := range bands {
		if b.Width != bw || b.Height != bh {
			return nil, fmt.Errorf("%w: band size %dx%d, want %dx%d", ErrIncomplete, b.Width, b.Height, bw, bh)
		}
	}

	out := plane.New(bw*n, bh*n)
	coef := make([]float64, n*n)
	pix := make([]float64, n*n)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for i, b := range bands {
				coef[i] = b.At(bx, by)
			}
			basis.Inverse(coef, pix)
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					out.Set(bx*n+x, by*n+y, pix[y*n+x])
				}
			}
		}
	}
	return out, nil
}
