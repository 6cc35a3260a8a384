// Package plane holds the float64 sample buffer shared by the color space,
// wavelet and blocking stages.
package plane

// Plane represents a 2D plane of float64 values with width, height, and stride
type Plane struct {
	Pix    []float64
	Width  int
	Height int
	Stride int
}

// New allocates a zeroed plane of the given size
func New(width, height int) *Plane {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Plane{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
		Stride: width,
	}
}

// At returns the value at column x, row y
func (p *Plane) At(x, y int) float64 {
	return p.Pix[y*p.Stride+x]
}

// Set stores v at column x, row y
func (p *Plane) Set(x, y int, v float64) {
	p.Pix[y*p.Stride+x] = v
}

// Clone returns a deep copy with a compact stride
func (p *Plane) Clone() *Plane {
	out := New(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+p.Width], p.Pix[y*p.Stride:y*p.Stride+p.Width])
	}
	return out
}

// Crop returns a compact copy of the top-left width x height region.
// Dimensions larger than the plane are clamped.
func (p *Plane) Crop(width, height int) *Plane {
	width = min(width, p.Width)
	height = min(height, p.Height)
	out := New(width, height)
	for y := 0; y < height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+width], p.Pix[y*p.Stride:y*p.Stride+width])
	}
	return out
}

// Sub returns a compact copy of the width x height region whose top-left
// corner is (x0, y0). The region is clamped to the plane.
func (p *Plane) Sub(x0, y0, width, height int) *Plane {
	x0 = max(0, min(x0, p.Width))
	y0 = max(0, min(y0, p.Height))
	width = min(width, p.Width-x0)
	height = min(height, p.Height-y0)
	out := New(width, height)
	for y := 0; y < out.Height; y++ {
		src := (y0+y)*p.Stride + x0
		copy(out.Pix[y*out.Stride:y*out.Stride+out.Width], p.Pix[src:src+out.Width])
	}
	return out
}

// Paste writes src into p with its top-left corner at (x0, y0).
// Parts of src falling outside p are dropped.
func (p *Plane) Paste(src *Plane, x0, y0 int) {
	for y := 0; y < src.Height; y++ {
		dy := y0 + y
		if dy < 0 || dy >= p.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			dx := x0 + x
			if dx < 0 || dx >= p.Width {
				continue
			}
			p.Pix[dy*p.Stride+dx] = src.Pix[y*src.Stride+x]
		}
	}
}

// Row returns a copy of row y
func (p *Plane) Row(y int) []float64 {
	row := make([]float64, p.Width)
	copy(row, p.Pix[y*p.Stride:y*p.Stride+p.Width])
	return row
}

// SetRow overwrites row y with the first Width values of row
func (p *Plane) SetRow(y int, row []float64) {
	copy(p.Pix[y*p.Stride:y*p.Stride+p.Width], row[:p.Width])
}

// Column returns a copy of column x
func (p *Plane) Column(x int) []float64 {
	col := make([]float64, p.Height)
	for y := 0; y < p.Height; y++ {
		col[y] = p.Pix[y*p.Stride+x]
	}
	return col
}

// SetColumn overwrites column x with the first Height values of col
func (p *Plane) SetColumn(x int, col []float64) {
	for y := 0; y < p.Height; y++ {
		p.Pix[y*p.Stride+x] = col[y]
	}
}

// Equal reports whether both planes have the same size and samples
func (p *Plane) Equal(q *Plane) bool {
	if p.Width != q.Width || p.Height != q.Height {
		return false
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if p.Pix[y*p.Stride+x] != q.Pix[y*q.Stride+x] {
				return false
			}
		}
	}
	return true
}
