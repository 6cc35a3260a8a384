// Package embed carries payload bits inside coefficient blocks.
//
// The production strategy is MeanReference: one bit per block, encoded as
// the sign of the difference between the block center and the mean of the
// remaining elements. Perimeter is an alternate base-4 scheme that writes
// eight symbols into the ring of a 3x3 block.
package embed

import (
	"errors"
	"fmt"

	"github.com/tuomas-lb/wavestego/internal/blocking"
	"github.com/tuomas-lb/wavestego/internal/plane"
)

const (
	// StrategyMean selects MeanReference
	StrategyMean = "mean"
	// StrategyPerimeter selects Perimeter
	StrategyPerimeter = "perimeter"
)

var (
	// ErrUnsupportedStrategy indicates an unknown strategy name
	ErrUnsupportedStrategy = errors.New("unsupported embedding strategy")
	// ErrBlockSize indicates the strategy cannot use the requested block size
	ErrBlockSize = errors.New("block size not supported by strategy")
)

// Strategy embeds and extracts bits in a single block
type Strategy interface {
	// BitsPerBlock returns how many payload bits one block carries
	BitsPerBlock(size int) int
	// Embed writes bits into b in place. len(bits) equals BitsPerBlock.
	Embed(b blocking.Block, bits []bool, step, alpha float64)
	// Extract reads BitsPerBlock bits back without the cover reference
	Extract(b blocking.Block) []bool
}

// GetStrategy returns the Strategy registered under name and checks that it
// can work with the given block size
func GetStrategy(name string, size int) (Strategy, error) {
	switch name {
	case "", StrategyMean:
		if size < 3 {
			return nil, fmt.Errorf("%w: %s needs at least 3, got %d", ErrBlockSize, StrategyMean, size)
		}
		return MeanReference{}, nil
	case StrategyPerimeter:
		if size != 3 {
			return nil, fmt.Errorf("%w: %s needs 3, got %d", ErrBlockSize, StrategyPerimeter, size)
		}
		return Perimeter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, name)
	}
}

// EmbedPlane divides p into blocks, writes bits into them in row-major order
// and returns the reassembled plane. Blocks beyond the payload are left
// untouched; a final partial group of bits is zero padded.
func EmbedPlane(p *plane.Plane, bits []bool, size int, s Strategy, step, alpha float64) *plane.Plane {
	blocks := blocking.Divide(p, size)
	per := s.BitsPerBlock(size)
	if per <= 0 {
		return p.Clone()
	}

	chunk := make([]bool, per)
	for i, b := range blocks {
		start := i * per
		if start >= len(bits) {
			break
		}
		n := copy(chunk, bits[start:])
		for j := n; j < per; j++ {
			chunk[j] = false
		}
		s.Embed(b, chunk, step, alpha)
	}

	return blocking.Merge(blocks, p, size)
}

// ExtractPlane reads every block of p and concatenates the recovered bits
func ExtractPlane(p *plane.Plane, size int, s Strategy) []bool {
	blocks := blocking.Divide(p, size)
	out := make([]bool, 0, len(blocks)*s.BitsPerBlock(size))
	for _, b := range blocks {
		out = append(out, s.Extract(b)...)
	}
	return out
}
