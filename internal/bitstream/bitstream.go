// Package bitstream packs payload bytes into the bit and base-4 symbol
// streams consumed by the block embedders.
package bitstream

import "math/bits"

// BytesToBits converts a byte slice to a boolean slice representing bits.
// Each byte is converted to 8 bits, MSB first.
func BytesToBits(data []byte) []bool {
	if len(data) == 0 {
		return nil
	}
	out := make([]bool, len(data)*8)
	for i, b := range data {
		offset := i * 8
		for j := 0; j < 8; j++ {
			out[offset+j] = (b>>(7-j))&1 == 1
		}
	}
	return out
}

// BitsToBytes converts a boolean slice to a byte slice.
// Bits are packed MSB first, with any trailing bits padded with zeros.
func BitsToBytes(in []bool) []byte {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, (len(in)+7)/8)
	for i, bit := range in {
		if bit {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}

// BytesToSymbols splits every byte into four base-4 digits, most significant first
func BytesToSymbols(data []byte) []uint8 {
	if len(data) == 0 {
		return nil
	}
	out := make([]uint8, 0, len(data)*4)
	for _, b := range data {
		out = append(out, b>>6&3, b>>4&3, b>>2&3, b&3)
	}
	return out
}

// SymbolsToBytes is the inverse of BytesToSymbols. A trailing group shorter
// than four digits is padded with zeros.
func SymbolsToBytes(symbols []uint8) []byte {
	if len(symbols) == 0 {
		return nil
	}
	out := make([]byte, (len(symbols)+3)/4)
	for i, s := range symbols {
		out[i/4] |= (s & 3) << (6 - 2*(i%4))
	}
	return out
}

// SymbolsToBits expands base-4 digits into two bits each, MSB first
func SymbolsToBits(symbols []uint8) []bool {
	out := make([]bool, 0, len(symbols)*2)
	for _, s := range symbols {
		out = append(out, s&2 != 0, s&1 != 0)
	}
	return out
}

// BitsToSymbols groups bits in pairs; an odd trailing bit is padded with zero
func BitsToSymbols(in []bool) []uint8 {
	out := make([]uint8, (len(in)+1)/2)
	for i, bit := range in {
		if bit {
			out[i/2] |= 1 << (1 - i%2)
		}
	}
	return out
}

// BitAccuracy returns the fraction of matching bits between expected and
// got. expected is repeated cyclically when got is longer, mirroring how
// the dispatcher tiles a payload.
func BitAccuracy(expected, got []byte) float64 {
	if len(expected) == 0 || len(got) == 0 {
		return 0
	}
	matching := 0
	for i, b := range got {
		matching += 8 - bits.OnesCount8(b^expected[i%len(expected)])
	}
	return float64(matching) / float64(len(got)*8)
}
