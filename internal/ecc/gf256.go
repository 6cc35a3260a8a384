package ecc

// GF(2^8) arithmetic with primitive polynomial x^8+x^4+x^3+x^2+1 and
// generator 2. Polynomials are stored highest degree first.

const primitivePoly = 0x11d

var (
	gfExp [512]byte
	gfLog [256]int
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= primitivePoly
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return gfExp[gfLog[x]+gfLog[y]]
}

func gfDiv(x, y byte) byte {
	if y == 0 {
		panic("ecc: division by zero in GF(256)")
	}
	if x == 0 {
		return 0
	}
	return gfExp[(gfLog[x]+255-gfLog[y])%255]
}

// gfPow raises x to power, which may be negative
func gfPow(x byte, power int) byte {
	e := (gfLog[x] * power) % 255
	if e < 0 {
		e += 255
	}
	return gfExp[e]
}

func gfInverse(x byte) byte {
	return gfExp[255-gfLog[x]]
}

func polyScale(p []byte, x byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = gfMul(c, x)
	}
	return out
}

// polyAdd adds two polynomials aligned on their lowest degree term
func polyAdd(p, q []byte) []byte {
	out := make([]byte, max(len(p), len(q)))
	for i, c := range p {
		out[i+len(out)-len(p)] = c
	}
	for i, c := range q {
		out[i+len(out)-len(q)] ^= c
	}
	return out
}

func polyMul(p, q []byte) []byte {
	out := make([]byte, len(p)+len(q)-1)
	for j, qc := range q {
		for i, pc := range p {
			out[i+j] ^= gfMul(pc, qc)
		}
	}
	return out
}

// polyEval evaluates p at x with Horner's scheme
func polyEval(p []byte, x byte) byte {
	y := p[0]
	for _, c := range p[1:] {
		y = gfMul(y, x) ^ c
	}
	return y
}

func reversed(p []byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[len(p)-1-i] = c
	}
	return out
}
