package wavelet

// CDF 9/7 lifting coefficients (JPEG 2000 irreversible filter)
const (
	alpha97 = -1.586134342
	beta97  = -0.052980118
	gamma97 = 0.882911075
	delta97 = 0.443506852
	k97     = 1.230174105
)

// lifting implements the CDF 9/7 filter bank as four lifting steps with
// whole-sample symmetric extension at both ends
type lifting struct{}

// CDF97 returns the Cohen-Daubechies-Feauveau 9/7 biorthogonal transform
func CDF97() Transform {
	return &separable{name: "cdf97", bank: lifting{}}
}

// predict adds c times the sum of the even neighbours to every odd sample
func predict(s, d []float64, c float64) {
	n := len(d)
	for i := 0; i < n; i++ {
		right := s[i]
		if i+1 < len(s) {
			right = s[i+1]
		}
		d[i] += c * (s[i] + right)
	}
}

// update adds c times the sum of the odd neighbours to every even sample
func update(s, d []float64, c float64) {
	for i := range s {
		left := d[0]
		if i > 0 {
			left = d[i-1]
		}
		s[i] += c * (left + d[i])
	}
}

func (lifting) analyze(x, lo, hi []float64) {
	for i := range lo {
		lo[i] = x[2*i]
		hi[i] = x[2*i+1]
	}
	predict(lo, hi, alpha97)
	update(lo, hi, beta97)
	predict(lo, hi, gamma97)
	update(lo, hi, delta97)
	for i := range lo {
		lo[i] /= k97
		hi[i] *= k97
	}
}

func (lifting) synthesize(lo, hi, x []float64) {
	s := make([]float64, len(lo))
	d := make([]float64, len(hi))
	for i := range s {
		s[i] = lo[i] * k97
		d[i] = hi[i] / k97
	}
	update(s, d, -delta97)
	predict(s, d, -gamma97)
	update(s, d, -beta97)
	predict(s, d, -alpha97)
	for i := range s {
		x[2*i] = s[i]
		x[2*i+1] = d[i]
	}
}
