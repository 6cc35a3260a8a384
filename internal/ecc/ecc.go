package ecc

import (
	"errors"
	"fmt"
)

// Scheme represents an error correction code scheme
type Scheme interface {
	// Encode expands a message into a codeword
	Encode(message []byte) ([]byte, error)
	// Decode corrects a codeword and returns the original message.
	// Returns ErrUncorrectable when the damage exceeds the code's capacity.
	Decode(codeword []byte) ([]byte, error)
	// EncodedLen returns the codeword length for a message of n bytes
	EncodedLen(n int) int
}

// ECCScheme is an enum for different ECC schemes
type ECCScheme uint8

const (
	// ECCSchemeReedSolomon uses Reed-Solomon over GF(2^8)
	ECCSchemeReedSolomon ECCScheme = iota
	// ECCSchemeRepetition3 uses repetition-3 encoding (each bit repeated 3 times)
	ECCSchemeRepetition3
)

var (
	// ErrUnsupportedScheme indicates the ECC scheme is not supported
	ErrUnsupportedScheme = errors.New("unsupported ECC scheme")
	// ErrInsufficientBits indicates there are not enough bits to decode
	ErrInsufficientBits = errors.New("insufficient bits for decoding")
	// ErrTooManySymbols indicates the requested redundancy leaves no room for data
	ErrTooManySymbols = errors.New("too many ECC symbols for block length")
	// ErrUncorrectable indicates more errors than the code can correct
	ErrUncorrectable = errors.New("uncorrectable codeword")
)

// ParseScheme maps a configuration name to an ECCScheme.
// The empty string selects Reed-Solomon.
func ParseScheme(name string) (ECCScheme, error) {
	switch name {
	case "", "rs", "reed-solomon":
		return ECCSchemeReedSolomon, nil
	case "rep3", "repetition3":
		return ECCSchemeRepetition3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
	}
}

// GetScheme returns a Scheme implementation for the given ECCScheme.
// symbols is the Reed-Solomon redundancy per block and is ignored by
// repetition coding.
func GetScheme(scheme ECCScheme, symbols int) (Scheme, error) {
	switch scheme {
	case ECCSchemeReedSolomon:
		if symbols < 0 || symbols >= MaxBlockLen {
			return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManySymbols, symbols, MaxBlockLen-1)
		}
		return &ReedSolomon{Symbols: symbols}, nil
	case ECCSchemeRepetition3:
		return &Repetition3{}, nil
	default:
		return nil, ErrUnsupportedScheme
	}
}
