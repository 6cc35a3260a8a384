package ecc

import (
	"github.com/tuomas-lb/wavestego/internal/bitstream"
)

// Repetition3 implements repetition-3 error correction coding
// Each data bit is encoded as 3 identical bits (b, b, b)
// Decoding uses majority vote on each triple
type Repetition3 struct{}

// EncodedLen implements Scheme
func (r *Repetition3) EncodedLen(n int) int { return n * 3 }

// Encode expands every bit of message into three copies and repacks them
func (r *Repetition3) Encode(message []byte) ([]byte, error) {
	dataBits := bitstream.BytesToBits(message)

	encodedBits := make([]bool, 0, len(dataBits)*3)
	for _, bit := range dataBits {
		encodedBits = append(encodedBits, bit, bit, bit)
	}

	return bitstream.BitsToBytes(encodedBits), nil
}

// Decode collapses each triple with a majority vote. It cannot detect
// failures, so it only errors on input too short to hold a triple.
func (r *Repetition3) Decode(codeword []byte) ([]byte, error) {
	bits := bitstream.BytesToBits(codeword)

	// drop triples that cannot form a whole byte
	tripleCount := len(bits) / 3
	tripleCount -= tripleCount % 8
	if tripleCount == 0 {
		return nil, ErrInsufficientBits
	}

	decodedBits := make([]bool, tripleCount)
	for i := 0; i < tripleCount; i++ {
		offset := i * 3
		ones := 0
		for _, b := range bits[offset : offset+3] {
			if b {
				ones++
			}
		}
		decodedBits[i] = ones >= 2
	}

	return bitstream.BitsToBytes(decodedBits), nil
}
