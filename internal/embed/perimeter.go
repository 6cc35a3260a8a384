package embed

import (
	"math"

	"github.com/tuomas-lb/wavestego/internal/bitstream"
	"github.com/tuomas-lb/wavestego/internal/blocking"
)

// perimeterOrder lists the (x, y) ring positions of a 3x3 block clockwise
// from the top-left corner
var perimeterOrder = [8][2]int{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}

// lcvToMove maps a locally contrastive value to the smallest adjustment
// with the same residue mod 4
var lcvToMove = [4]float64{0, 1, 2, -1}

// Perimeter stores eight base-4 symbols per 3x3 block. Each symbol is the
// residue of ring element plus center, mod 4, over rounded coefficients.
// It ignores step and alpha, and the residues only survive a pipeline that
// is lossless on integers end to end.
type Perimeter struct{}

// BitsPerBlock implements Strategy
func (Perimeter) BitsPerBlock(int) int { return 2 * len(perimeterOrder) }

// Embed implements Strategy
func (Perimeter) Embed(b blocking.Block, bits []bool, _, _ float64) {
	symbols := bitstream.BitsToSymbols(bits)
	center := math.Round(b.At(1, 1))
	b.Set(1, 1, center)

	for i, pos := range perimeterOrder {
		var s uint8
		if i < len(symbols) {
			s = symbols[i]
		}
		v := math.Round(b.At(pos[0], pos[1]))
		f := mod4(v + center)
		lcv := (int(s) - f + 4) % 4
		b.Set(pos[0], pos[1], v+lcvToMove[lcv])
	}
}

// Extract implements Strategy
func (Perimeter) Extract(b blocking.Block) []bool {
	center := math.Round(b.At(1, 1))
	symbols := make([]uint8, len(perimeterOrder))
	for i, pos := range perimeterOrder {
		symbols[i] = uint8(mod4(math.Round(b.At(pos[0], pos[1])) + center))
	}
	return bitstream.SymbolsToBits(symbols)
}

func mod4(v float64) int {
	return ((int(v) % 4) + 4) % 4
}
