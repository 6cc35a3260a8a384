package embed

import "github.com/tuomas-lb/wavestego/internal/blocking"

// MeanReference stores one bit per block. The center is set to the mean of
// the other elements plus or minus alpha*step, and read back as the sign of
// center minus mean. Ties read as 0.
type MeanReference struct{}

// BitsPerBlock implements Strategy
func (MeanReference) BitsPerBlock(int) int { return 1 }

// Embed implements Strategy
func (MeanReference) Embed(b blocking.Block, bits []bool, step, alpha float64) {
	mean := ringMean(b)
	if len(bits) > 0 && bits[0] {
		b.Pix[b.Center()] = mean + alpha*step
	} else {
		b.Pix[b.Center()] = mean - alpha*step
	}
}

// Extract implements Strategy
func (MeanReference) Extract(b blocking.Block) []bool {
	return []bool{b.Pix[b.Center()]-ringMean(b) > 0}
}

// ringMean averages all elements except the center
func ringMean(b blocking.Block) float64 {
	center := b.Center()
	sum := 0.0
	for i, v := range b.Pix {
		if i != center {
			sum += v
		}
	}
	return sum / float64(len(b.Pix)-1)
}
