package wavelet

import (
	"fmt"

	"github.com/tuomas-lb/wavestego/internal/plane"
)

// filterBank is a perfectly reconstructing 1D two-channel filter bank on
// even-length signals
type filterBank interface {
	// analyze splits x into len(x)/2 low and high coefficients
	analyze(x, lo, hi []float64)
	// synthesize rebuilds x from lo and hi
	synthesize(lo, hi, x []float64)
}

// separable applies a filterBank along rows and then columns, recursing on
// the approximation
type separable struct {
	name string
	bank filterBank
}

func (s *separable) Name() string { return s.name }

// Forward implements Transform
func (s *separable) Forward(p *plane.Plane, level int) (*Decomposition, error) {
	if err := checkDims(p, level); err != nil {
		return nil, err
	}

	d := &Decomposition{Details: make([]Level, 0, level)}
	cur := p.Clone()
	for l := 0; l < level; l++ {
		approx, details := s.split(cur)
		d.Details = append(d.Details, details)
		cur = approx
	}
	d.Approx = cur
	return d, nil
}

// Inverse implements Transform
func (s *separable) Inverse(d *Decomposition) (*plane.Plane, error) {
	if d == nil || d.Approx == nil {
		return nil, fmt.Errorf("%w: missing approximation", ErrIncomplete)
	}

	cur := d.Approx
	for l := len(d.Details) - 1; l >= 0; l-- {
		lvl := d.Details[l]
		for _, label := range Labels {
			q, ok := lvl[label]
			if !ok || q.Width != cur.Width || q.Height != cur.Height {
				return nil, fmt.Errorf("%w: level %d plane %q", ErrIncomplete, l, label)
			}
		}
		cur = s.merge(cur, lvl)
	}
	return cur.Clone(), nil
}

// split performs one level: rows first, then columns
func (s *separable) split(p *plane.Plane) (*plane.Plane, Level) {
	w, h := p.Width, p.Height
	hw, hh := w/2, h/2
	tmp := plane.New(w, h)

	lo := make([]float64, hw)
	hi := make([]float64, hw)
	for y := 0; y < h; y++ {
		s.bank.analyze(p.Row(y), lo, hi)
		tmp.SetRow(y, append(append(make([]float64, 0, w), lo...), hi...))
	}

	lo = make([]float64, hh)
	hi = make([]float64, hh)
	for x := 0; x < w; x++ {
		s.bank.analyze(tmp.Column(x), lo, hi)
		tmp.SetColumn(x, append(append(make([]float64, 0, h), lo...), hi...))
	}

	return tmp.Sub(0, 0, hw, hh), Level{
		Vertical:   tmp.Sub(hw, 0, hw, hh),
		Horizontal: tmp.Sub(0, hh, hw, hh),
		Diagonal:   tmp.Sub(hw, hh, hw, hh),
	}
}

// merge is the inverse of split
func (s *separable) merge(approx *plane.Plane, lvl Level) *plane.Plane {
	hw, hh := approx.Width, approx.Height
	w, h := hw*2, hh*2
	tmp := plane.New(w, h)
	tmp.Paste(approx, 0, 0)
	tmp.Paste(lvl[Vertical], hw, 0)
	tmp.Paste(lvl[Horizontal], 0, hh)
	tmp.Paste(lvl[Diagonal], hw, hh)

	col := make([]float64, h)
	for x := 0; x < w; x++ {
		c := tmp.Column(x)
		s.bank.synthesize(c[:hh], c[hh:], col)
		tmp.SetColumn(x, col)
	}

	row := make([]float64, w)
	for y := 0; y < h; y++ {
		r := tmp.Row(y)
		s.bank.synthesize(r[:hw], r[hw:], row)
		tmp.SetRow(y, row)
	}
	return tmp
}
