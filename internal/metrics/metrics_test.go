package metrics

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func flat(width, height int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestCompareIdentical(t *testing.T) {
	d := Compare(flat(8, 8, 100), flat(8, 8, 100))
	assert.Equal(t, 0.0, d.MSE)
	assert.True(t, math.IsInf(d.PSNR, 1))
	assert.Equal(t, 0.0, d.MeanAbsDiff)
}

func TestCompareOffset(t *testing.T) {
	d := Compare(flat(8, 8, 100), flat(8, 8, 98))
	assert.InDelta(t, 4.0, d.MSE, 1e-12)
	assert.InDelta(t, 2.0, d.MeanAbsDiff, 1e-12)
	assert.InDelta(t, 2.0, d.Min, 1e-12)
	assert.InDelta(t, 2.0, d.Max, 1e-12)
	assert.InDelta(t, 20*math.Log10(255.0/2.0), d.PSNR, 1e-9)
}

func TestCompareDifferentSizes(t *testing.T) {
	// only the shared top-left region counts
	d := Compare(flat(8, 8, 10), flat(4, 6, 10))
	assert.Equal(t, 0.0, d.MSE)
}

func TestPSNR(t *testing.T) {
	tests := []struct {
		name     string
		original []byte
		stego    []byte
		want     float64
	}{
		{name: "length mismatch", original: []byte{1, 2}, stego: []byte{1}, want: 0},
		{name: "empty", want: 0},
		{name: "one off", original: []byte{10, 10}, stego: []byte{11, 9}, want: 20 * math.Log10(255)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PSNR(tt.original, tt.stego), 1e-9)
		})
	}
	assert.True(t, math.IsInf(PSNR([]byte{3}, []byte{3}), 1))
}

func TestValidatePSNR(t *testing.T) {
	assert.True(t, ValidatePSNR(math.Inf(1), 40))
	assert.True(t, ValidatePSNR(41, 40))
	assert.False(t, ValidatePSNR(39.9, 40))
}

func TestBitAccuracy(t *testing.T) {
	assert.Equal(t, 1.0, BitAccuracy([]byte("ab"), []byte("abab")))
	assert.Equal(t, 0.875, BitAccuracy([]byte{0x00}, []byte{0x01}))
}
