// Package wavelet provides the multi-level 2D decompositions the payload is
// embedded into.
//
// Every transform splits a plane into an approximation and, per level, three
// detail planes labelled by the filter run down the columns (first letter)
// and along the rows (second letter): "da" holds horizontal detail, "ad"
// vertical and "dd" diagonal. Details[0] is the finest level and the last
// entry is the coarsest, whose planes are 1/2^level the size of the input.
package wavelet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuomas-lb/wavestego/internal/plane"
)

// Detail labels
const (
	Horizontal = "da"
	Vertical   = "ad"
	Diagonal   = "dd"
)

// Labels lists the detail labels in canonical order
var Labels = []string{Horizontal, Vertical, Diagonal}

var (
	// ErrUnsupportedWavelet indicates an unknown transform name
	ErrUnsupportedWavelet = errors.New("unsupported wavelet")
	// ErrLevel indicates a decomposition level below 1
	ErrLevel = errors.New("invalid decomposition level")
	// ErrDimensions indicates a plane that cannot be halved level times
	ErrDimensions = errors.New("plane dimensions not divisible by 2^level")
	// ErrIncomplete indicates a decomposition missing planes for Inverse
	ErrIncomplete = errors.New("incomplete decomposition")
)

// Level maps detail labels to planes
type Level map[string]*plane.Plane

// Decomposition is the result of a forward transform
type Decomposition struct {
	Approx  *plane.Plane
	Details []Level
	// Residual carries transform specific planes that are neither the
	// approximation nor a labelled detail. Inverse needs them unchanged.
	Residual []*plane.Plane
}

// Coarsest returns the detail planes of the deepest level
func (d *Decomposition) Coarsest() Level {
	if len(d.Details) == 0 {
		return nil
	}
	return d.Details[len(d.Details)-1]
}

// Transform is a reversible multi-level 2D decomposition
type Transform interface {
	Name() string
	Forward(p *plane.Plane, level int) (*Decomposition, error)
	Inverse(d *Decomposition) (*plane.Plane, error)
}

// Get returns the transform registered under name (case-insensitive)
func Get(name string) (Transform, error) {
	switch strings.ToLower(name) {
	case "haar", "db1":
		return Haar(), nil
	case "db2":
		return Daubechies2(), nil
	case "cdf97", "bior4.4":
		return CDF97(), nil
	case "dct":
		return BlockDCT{}, nil
	case "iwt53", "cdf53":
		return Integer53(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedWavelet, name)
	}
}

func checkDims(p *plane.Plane, level int) error {
	if level < 1 {
		return fmt.Errorf("%w: %d", ErrLevel, level)
	}
	m := 1 << level
	if p.Width == 0 || p.Height == 0 || p.Width%m != 0 || p.Height%m != 0 {
		return fmt.Errorf("%w: %dx%d at level %d", ErrDimensions, p.Width, p.Height, level)
	}
	return nil
}
