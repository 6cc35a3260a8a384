// Package dispatch sizes the payload against an image and splits it into
// the per-plane parts that are embedded into individual detail planes.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Terminator ends every copy of the message inside the tiled stream
const Terminator = 0x00

const (
	// ModeTiled spreads repeated copies over the whole image capacity
	ModeTiled = "tiled"
	// ModeUniform puts the same plane-sized buffer into every plane
	ModeUniform = "uniform"
)

var (
	// ErrCapacity indicates the message does not fit the image
	ErrCapacity = errors.New("message exceeds image capacity")
	// ErrUnsupportedMode indicates an unknown dispatch mode
	ErrUnsupportedMode = errors.New("unsupported dispatch mode")
)

// Capacity is the byte capacity of an image for a set of parameters
type Capacity struct {
	// PerPlane is the number of bytes one detail plane carries
	PerPlane int
	// Total is PerPlane times the number of planes used
	Total int
}

// GetCapacity computes the capacity of a width x height channel decomposed
// to level and embedded with blockSize blocks carrying bitsPerBlock bits
// each, over planes detail planes
func GetCapacity(width, height, blockSize, level, planes, bitsPerBlock int) Capacity {
	if blockSize <= 0 || level < 0 || planes <= 0 || bitsPerBlock <= 0 {
		return Capacity{}
	}
	initial := blockSize << level
	blocks := (height / initial) * (width / initial)
	perPlane := blocks * bitsPerBlock / 8
	return Capacity{PerPlane: perPlane, Total: perPlane * planes}
}

// Dispatcher splits a message into per-plane parts
type Dispatcher func(msg []byte, c Capacity) ([][]byte, error)

// Get returns the Dispatcher registered under mode. The empty string
// selects ModeTiled.
func Get(mode string) (Dispatcher, error) {
	switch mode {
	case "", ModeTiled:
		return Tiled, nil
	case ModeUniform:
		return Uniform, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// Tile repeats msg cyclically until it is exactly n bytes long
func Tile(msg []byte, n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	if len(msg) == 0 {
		return out
	}
	for i := 0; i < n; i += len(msg) {
		copy(out[i:], msg)
	}
	return out
}

// fill terminates msg, repeats it as many whole times as fit in n bytes and
// pads the rest with Terminator
func fill(msg []byte, n int) []byte {
	framed := append(append(make([]byte, 0, len(msg)+1), msg...), Terminator)
	fits := n / len(framed)
	out := make([]byte, n)
	copy(out, Tile(framed, fits*len(framed)))
	return out
}

// Tiled terminates msg, tiles it over the whole capacity and cuts the
// result into PerPlane sized parts
func Tiled(msg []byte, c Capacity) ([][]byte, error) {
	if c.Total < len(msg)+1 || c.PerPlane <= 0 {
		return nil, fmt.Errorf("%w: capacity %d, message %d+1", ErrCapacity, c.Total, len(msg))
	}

	buf := fill(msg, c.Total)
	return lo.Chunk(buf, c.PerPlane), nil
}

// Uniform terminates msg, tiles it over one plane and hands the same buffer
// to every plane
func Uniform(msg []byte, c Capacity) ([][]byte, error) {
	if c.PerPlane < len(msg)+1 {
		return nil, fmt.Errorf("%w: plane capacity %d, message %d+1", ErrCapacity, c.PerPlane, len(msg))
	}

	buf := fill(msg, c.PerPlane)
	planes := c.Total / c.PerPlane
	return lo.Times(planes, func(int) []byte {
		return append([]byte(nil), buf...)
	}), nil
}

// Consolidate trims every extracted part to perPlane bytes and joins them
// in order
func Consolidate(parts [][]byte, perPlane int) []byte {
	trimmed := lo.Map(parts, func(p []byte, _ int) []byte {
		return p[:min(len(p), max(perPlane, 0))]
	})
	return lo.Flatten(trimmed)
}
