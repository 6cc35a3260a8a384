// Package metrics measures how far a stego image drifted from its cover and
// how much of the payload came back.
package metrics

import (
	"image"
	"math"

	"github.com/tuomas-lb/wavestego/internal/bitstream"
)

// MaxSample is the peak value of an 8-bit channel
const MaxSample = 255.0

// Diff summarizes the per-sample difference of two images over their RGB
// channels
type Diff struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	MeanAbsDiff float64 `json:"abs_diff_mean"`
	MSE         float64 `json:"mse"`
	PSNR        float64 `json:"psnr"`
}

// Compare computes the Diff of a against b over the region both images
// cover, anchored at their top-left corners
func Compare(a, b image.Image) Diff {
	ab, bb := a.Bounds(), b.Bounds()
	width := min(ab.Dx(), bb.Dx())
	height := min(ab.Dy(), bb.Dy())

	var (
		d     = Diff{Min: math.Inf(1), Max: math.Inf(-1)}
		n     int
		sumSq float64
		sumAb float64
	)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r1, g1, b1, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			for _, pair := range [3][2]uint32{{r1, r2}, {g1, g2}, {b1, b2}} {
				diff := float64(pair[0]>>8) - float64(pair[1]>>8)
				d.Min = math.Min(d.Min, diff)
				d.Max = math.Max(d.Max, diff)
				sumSq += diff * diff
				sumAb += math.Abs(diff)
				n++
			}
		}
	}

	if n == 0 {
		return Diff{PSNR: math.Inf(1)}
	}
	d.MSE = sumSq / float64(n)
	d.MeanAbsDiff = sumAb / float64(n)
	d.PSNR = PSNRFromMSE(d.MSE, MaxSample)
	return d
}

// PSNRFromMSE converts a mean squared error to PSNR in dB for samples
// ranging up to peak. Identical signals have infinite PSNR.
func PSNRFromMSE(mse, peak float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(peak/math.Sqrt(mse))
}

// PSNR calculates PSNR between two equally long 8-bit sample buffers
func PSNR(original, stego []byte) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	return PSNRFromMSE(mse, MaxSample)
}

// ValidatePSNR reports whether psnr meets threshold
func ValidatePSNR(psnr, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}

// BitAccuracy returns the fraction of bits of got that match expected
// repeated cyclically
func BitAccuracy(expected, got []byte) float64 {
	return bitstream.BitAccuracy(expected, got)
}
