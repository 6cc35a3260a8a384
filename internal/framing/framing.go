// Package framing makes codewords safe to delimit with NUL bytes.
//
// Payloads are tiled across the capacity with a NUL separator between
// copies, so an ECC codeword containing a zero byte would be cut apart by
// the voter. Consistent Overhead Byte Stuffing removes every zero at a cost
// of one byte per 254 bytes of input plus one.
package framing

import (
	"bytes"
	"errors"
	"fmt"
)

// Delimiter separates stuffed frames in the embedded stream
const Delimiter = 0x00

var (
	// ErrDelimiterInFrame indicates a stuffed frame contains a NUL byte
	ErrDelimiterInFrame = errors.New("delimiter inside stuffed frame")
	// ErrInvalidLength indicates a block code points past the end of the frame
	ErrInvalidLength = errors.New("invalid block length")
	// ErrFrameTooShort indicates an empty stuffed frame
	ErrFrameTooShort = errors.New("frame too short")
)

// StuffedLen returns the stuffed size of an n byte payload
func StuffedLen(n int) int {
	return n + n/254 + 1
}

// Stuff encodes payload so the result contains no Delimiter bytes
func Stuff(payload []byte) []byte {
	out := make([]byte, 1, StuffedLen(len(payload)))
	codeIdx := 0
	code := byte(1)

	for _, b := range payload {
		if b == Delimiter {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
			continue
		}
		out = append(out, b)
		code++
		if code == 0xff {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
		}
	}
	out[codeIdx] = code
	return out
}

// Unstuff reverses Stuff
func Unstuff(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrFrameTooShort
	}
	if i := bytes.IndexByte(frame, Delimiter); i >= 0 {
		return nil, fmt.Errorf("%w at offset %d", ErrDelimiterInFrame, i)
	}

	out := make([]byte, 0, len(frame))
	for i := 0; i < len(frame); {
		code := int(frame[i])
		end := i + code
		if end > len(frame) {
			return nil, fmt.Errorf("%w: code %d at offset %d", ErrInvalidLength, code, i)
		}
		out = append(out, frame[i+1:end]...)
		i = end
		if code < 0xff && i < len(frame) {
			out = append(out, Delimiter)
		}
	}
	return out, nil
}
