package wavelet

import "math"

// lifting53 is the reversible 5/3 integer lifting scheme. On integer input
// every coefficient is an integer and synthesis restores the input exactly,
// which is what residue based embedding needs. The last odd sample predicts
// from its left neighbour only.
type lifting53 struct{}

func (lifting53) analyze(x, lo, hi []float64) {
	l := len(x) / 2
	for i := 0; i < l-1; i++ {
		hi[i] = x[2*i+1] - math.Floor(0.5*(x[2*i]+x[2*i+2]))
	}
	hi[l-1] = x[2*l-1] - x[2*l-2]

	lo[0] = x[0] + math.Floor(0.5*hi[0]+0.5)
	for i := 1; i < l; i++ {
		lo[i] = x[2*i] + math.Floor(0.25*(hi[i]+hi[i-1])+0.5)
	}
}

func (lifting53) synthesize(lo, hi, x []float64) {
	l := len(lo)
	x[0] = lo[0] - math.Floor(0.5*hi[0]+0.5)
	for i := 1; i < l; i++ {
		x[2*i] = lo[i] - math.Floor(0.25*(hi[i]+hi[i-1])+0.5)
	}

	for i := 0; i < l-1; i++ {
		x[2*i+1] = hi[i] + math.Floor(0.5*(x[2*i]+x[2*i+2]))
	}
	x[2*l-1] = hi[l-1] + x[2*l-2]
}

// Integer53 returns the reversible 5/3 integer wavelet transform
func Integer53() Transform {
	return &separable{name: "iwt53", bank: lifting53{}}
}
