// Package vote recovers the most likely message from a consolidated buffer
// that holds many noisy NUL-terminated copies of it.
package vote

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// MinFragmentLen is the shortest fragment taken into account. Shorter runs
// are mostly padding and noise between copies.
const MinFragmentLen = 6

const (
	// MethodFragment selects RepeatingFragment
	MethodFragment = "fragment"
	// MethodMode selects PositionalMode
	MethodMode = "mode"
)

var (
	// ErrNoFragment indicates the buffer has no fragment long enough to vote on
	ErrNoFragment = errors.New("no candidate fragment")
	// ErrUnsupportedMethod indicates an unknown consolidation method
	ErrUnsupportedMethod = errors.New("unsupported consolidation method")
)

// Voter picks a message out of a consolidated buffer
type Voter func(buf []byte) ([]byte, error)

// Get returns the Voter registered under method. The empty string selects
// MethodFragment.
func Get(method string) (Voter, error) {
	switch method {
	case "", MethodFragment:
		return RepeatingFragment, nil
	case MethodMode:
		return PositionalMode, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

func fragments(buf []byte) [][]byte {
	return lo.Filter(bytes.Split(buf, []byte{0}), func(f []byte, _ int) bool {
		return len(f) >= MinFragmentLen
	})
}

// RepeatingFragment splits buf on NUL and returns the fragment that occurs
// most often. Ties go to the fragment seen first.
func RepeatingFragment(buf []byte) ([]byte, error) {
	frags := fragments(buf)
	if len(frags) == 0 {
		return nil, ErrNoFragment
	}

	counts := lo.CountValues(lo.Map(frags, func(f []byte, _ int) string { return string(f) }))

	best := frags[0]
	for _, f := range frags[1:] {
		if counts[string(f)] > counts[string(best)] {
			best = f
		}
	}
	return append([]byte(nil), best...), nil
}

// PositionalMode aligns all fragments on their first byte and takes the most
// common byte at every position. The result is cut to the most common
// fragment length; ties at a position go to the smallest byte and ties in
// length to the shortest.
func PositionalMode(buf []byte) ([]byte, error) {
	frags := fragments(buf)
	if len(frags) == 0 {
		return nil, ErrNoFragment
	}

	lengths := lo.CountValues(lo.Map(frags, func(f []byte, _ int) int { return len(f) }))
	length := 0
	for l, n := range lengths {
		if n > lengths[length] || (n == lengths[length] && l < length) {
			length = l
		}
	}

	out := make([]byte, length)
	for pos := range out {
		var hist [256]int
		for _, f := range frags {
			// short fragments count as zero padded
			if pos < len(f) {
				hist[f[pos]]++
			} else {
				hist[0]++
			}
		}
		best := 0
		for b := 1; b < 256; b++ {
			if hist[b] > hist[best] {
				best = b
			}
		}
		out[pos] = byte(best)
	}
	return out, nil
}
