package ecc

import "fmt"

// MaxBlockLen is the longest Reed-Solomon codeword over GF(2^8)
const MaxBlockLen = 255

// ReedSolomon is a systematic Reed-Solomon code over GF(2^8) with first
// consecutive root 0. Messages longer than MaxBlockLen-Symbols bytes are
// split into chunks and every chunk gets Symbols parity bytes, so a chunk
// survives up to Symbols/2 corrupted bytes.
type ReedSolomon struct {
	Symbols int
}

func (rs *ReedSolomon) dataLen() int {
	return MaxBlockLen - rs.Symbols
}

// EncodedLen implements Scheme
func (rs *ReedSolomon) EncodedLen(n int) int {
	if rs.Symbols <= 0 || n == 0 {
		return n
	}
	k := rs.dataLen()
	chunks := (n + k - 1) / k
	return n + chunks*rs.Symbols
}

// Encode appends parity to every chunk of message
func (rs *ReedSolomon) Encode(message []byte) ([]byte, error) {
	if rs.Symbols < 0 || rs.Symbols >= MaxBlockLen {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManySymbols, rs.Symbols, MaxBlockLen-1)
	}
	if rs.Symbols == 0 {
		return append([]byte(nil), message...), nil
	}

	gen := generatorPoly(rs.Symbols)
	k := rs.dataLen()
	out := make([]byte, 0, rs.EncodedLen(len(message)))
	for start := 0; start < len(message); start += k {
		end := min(start+k, len(message))
		out = append(out, encodeBlock(message[start:end], gen)...)
	}
	return out, nil
}

// Decode corrects every chunk of codeword and strips the parity
func (rs *ReedSolomon) Decode(codeword []byte) ([]byte, error) {
	if rs.Symbols < 0 || rs.Symbols >= MaxBlockLen {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManySymbols, rs.Symbols, MaxBlockLen-1)
	}
	if rs.Symbols == 0 {
		return append([]byte(nil), codeword...), nil
	}

	out := make([]byte, 0, len(codeword))
	for start := 0; start < len(codeword); start += MaxBlockLen {
		end := min(start+MaxBlockLen, len(codeword))
		block := codeword[start:end]
		if len(block) <= rs.Symbols {
			return nil, fmt.Errorf("%w: block of %d bytes carries no data", ErrUncorrectable, len(block))
		}
		data, err := decodeBlock(block, rs.Symbols)
		if err != nil {
			return nil, fmt.Errorf("block at offset %d: %w", start, err)
		}
		out = append(out, data...)
	}
	return out, nil
}

func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// encodeBlock computes the parity by synthetic division by the generator
func encodeBlock(msg, gen []byte) []byte {
	buf := make([]byte, len(msg)+len(gen)-1)
	copy(buf, msg)
	for i := 0; i < len(msg); i++ {
		coef := buf[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(gen); j++ {
			buf[i+j] ^= gfMul(gen[j], coef)
		}
	}
	copy(buf, msg)
	return buf
}

// syndromes evaluates the codeword at the generator roots. The leading zero
// keeps the indexing used by the locator and evaluator below.
func syndromes(msg []byte, nsym int) []byte {
	synd := make([]byte, nsym+1)
	for i := 0; i < nsym; i++ {
		synd[i+1] = polyEval(msg, gfPow(2, i))
	}
	return synd
}

func allZero(p []byte) bool {
	for _, c := range p {
		if c != 0 {
			return false
		}
	}
	return true
}

func decodeBlock(block []byte, nsym int) ([]byte, error) {
	msg := append([]byte(nil), block...)
	synd := syndromes(msg, nsym)
	if allZero(synd) {
		return msg[:len(msg)-nsym], nil
	}

	errLoc, err := findErrorLocator(synd, nsym)
	if err != nil {
		return nil, err
	}
	errPos, err := findErrors(reversed(errLoc), len(msg))
	if err != nil {
		return nil, err
	}
	msg, err = correctErrata(msg, synd, errPos)
	if err != nil {
		return nil, err
	}

	if !allZero(syndromes(msg, nsym)) {
		return nil, fmt.Errorf("%w: residual syndrome after correction", ErrUncorrectable)
	}
	return msg[:len(msg)-nsym], nil
}

// findErrorLocator runs Berlekamp-Massey over the syndromes
func findErrorLocator(synd []byte, nsym int) ([]byte, error) {
	errLoc := []byte{1}
	oldLoc := []byte{1}
	shift := len(synd) - nsym

	for i := 0; i < nsym; i++ {
		k := i + shift
		delta := synd[k]
		for j := 1; j < len(errLoc) && k-j >= 0; j++ {
			delta ^= gfMul(errLoc[len(errLoc)-1-j], synd[k-j])
		}
		oldLoc = append(oldLoc, 0)
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				oldLoc = polyScale(errLoc, gfInverse(delta))
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, polyScale(oldLoc, delta))
		}
	}

	for len(errLoc) > 1 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	if errs := len(errLoc) - 1; errs*2 > nsym {
		return nil, fmt.Errorf("%w: %d errors exceed %d parity symbols", ErrUncorrectable, errs, nsym)
	}
	return errLoc, nil
}

// findErrors locates the roots of the reversed locator by exhaustive search
// over the positions of a codeword of length n
func findErrors(errLocRev []byte, n int) ([]int, error) {
	errs := len(errLocRev) - 1
	var pos []int
	for i := 0; i < n; i++ {
		if polyEval(errLocRev, gfPow(2, i)) == 0 {
			pos = append(pos, n-1-i)
		}
	}
	if len(pos) != errs {
		return nil, fmt.Errorf("%w: located %d of %d errors", ErrUncorrectable, len(pos), errs)
	}
	return pos, nil
}

// correctErrata computes error magnitudes with Forney's algorithm and
// applies them
func correctErrata(msg, synd []byte, errPos []int) ([]byte, error) {
	coefPos := make([]int, len(errPos))
	for i, p := range errPos {
		coefPos[i] = len(msg) - 1 - p
	}

	loc := []byte{1}
	for _, cp := range coefPos {
		loc = polyMul(loc, polyAdd([]byte{1}, []byte{gfPow(2, cp), 0}))
	}

	// evaluator: remainder of S(x)*loc(x) modulo x^(e+1)
	product := polyMul(reversed(synd), loc)
	e := len(loc) - 1
	evaluator := reversed(product[max(0, len(product)-(e+1)):])

	xs := make([]byte, len(coefPos))
	for i, cp := range coefPos {
		xs[i] = gfPow(2, -(MaxBlockLen - cp))
	}

	magnitudes := make([]byte, len(msg))
	for i, xi := range xs {
		xiInv := gfInverse(xi)

		var prime byte = 1
		for j, xj := range xs {
			if j != i {
				prime = gfMul(prime, 1^gfMul(xiInv, xj))
			}
		}
		if prime == 0 {
			return nil, fmt.Errorf("%w: repeated error locator root", ErrUncorrectable)
		}

		y := gfMul(xi, polyEval(reversed(evaluator), xiInv))
		magnitudes[errPos[i]] = gfDiv(y, prime)
	}

	return polyAdd(msg, magnitudes), nil
}
