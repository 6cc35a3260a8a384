// Package blocking tiles a coefficient plane into non-overlapping square
// blocks and puts them back.
package blocking

import "github.com/tuomas-lb/wavestego/internal/plane"

// Block is a square sub-array of a plane stored row-major
type Block struct {
	Pix  []float64
	Size int
}

// At returns the value at column x, row y of the block
func (b Block) At(x, y int) float64 {
	return b.Pix[y*b.Size+x]
}

// Set stores v at column x, row y of the block
func (b Block) Set(x, y int, v float64) {
	b.Pix[y*b.Size+x] = v
}

// Center returns the index of the carrier element
func (b Block) Center() int {
	c := b.Size / 2
	return c*b.Size + c
}

// CropDims rounds width and height down to multiples of multiple
func CropDims(width, height, multiple int) (int, int) {
	if multiple <= 0 {
		return width, height
	}
	return width / multiple * multiple, height / multiple * multiple
}

// Grid returns how many whole blocks fit across and down a plane
func Grid(width, height, size int) (across, down int) {
	if size <= 0 {
		return 0, 0
	}
	return width / size, height / size
}

// Divide crops the trailing rows and columns of p that do not fill a whole
// block and returns the blocks in row-major order. Blocks are copies.
func Divide(p *plane.Plane, size int) []Block {
	across, down := Grid(p.Width, p.Height, size)
	blocks := make([]Block, 0, across*down)

	for by := 0; by < down; by++ {
		for bx := 0; bx < across; bx++ {
			pix := make([]float64, size*size)
			for y := 0; y < size; y++ {
				src := (by*size+y)*p.Stride + bx*size
				copy(pix[y*size:(y+1)*size], p.Pix[src:src+size])
			}
			blocks = append(blocks, Block{Pix: pix, Size: size})
		}
	}

	return blocks
}

// Merge writes blocks row-major over a copy of p. Rows and columns that
// Divide cropped are passed through unchanged. Surplus blocks are ignored
// and missing ones leave the original samples in place.
func Merge(blocks []Block, p *plane.Plane, size int) *plane.Plane {
	out := p.Clone()
	across, down := Grid(p.Width, p.Height, size)

	idx := 0
	for by := 0; by < down; by++ {
		for bx := 0; bx < across; bx++ {
			if idx >= len(blocks) {
				return out
			}
			b := blocks[idx]
			for y := 0; y < size; y++ {
				dst := (by*size+y)*out.Stride + bx*size
				copy(out.Pix[dst:dst+size], b.Pix[y*size:(y+1)*size])
			}
			idx++
		}
	}

	return out
}
