package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuomas-lb/wavestego/internal/plane"
)

func numbered(width, height int) *plane.Plane {
	p := plane.New(width, height)
	for i := range p.Pix {
		p.Pix[i] = float64(i)
	}
	return p
}

func TestDivideRowMajor(t *testing.T) {
	p := numbered(6, 3)
	blocks := Divide(p, 3)
	require.Len(t, blocks, 2)

	assert.Equal(t, []float64{0, 1, 2, 6, 7, 8, 12, 13, 14}, blocks[0].Pix)
	assert.Equal(t, []float64{3, 4, 5, 9, 10, 11, 15, 16, 17}, blocks[1].Pix)
	assert.Equal(t, 4, blocks[0].Center())
	assert.Equal(t, 7.0, blocks[0].At(1, 1))
}

func TestDivideCropsRemainder(t *testing.T) {
	p := numbered(8, 7)
	blocks := Divide(p, 3)
	// 8x7 crops to 6x6
	assert.Len(t, blocks, 4)
}

func TestMergeInverse(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
	}{
		{name: "exact 3", width: 9, height: 12, size: 3},
		{name: "exact 5", width: 10, height: 15, size: 5},
		{name: "square 4", width: 16, height: 16, size: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := numbered(tt.width, tt.height)
			merged := Merge(Divide(p, tt.size), p, tt.size)
			assert.True(t, merged.Equal(p))
		})
	}
}

func TestMergeKeepsCroppedBorder(t *testing.T) {
	p := numbered(7, 8)
	blocks := Divide(p, 3)
	for _, b := range blocks {
		for i := range b.Pix {
			b.Pix[i] = -1
		}
	}

	merged := Merge(blocks, p, 3)
	for y := 0; y < 8; y++ {
		for x := 0; x < 7; x++ {
			if x < 6 && y < 6 {
				assert.Equal(t, -1.0, merged.At(x, y))
			} else {
				assert.Equal(t, p.At(x, y), merged.At(x, y), "border (%d,%d)", x, y)
			}
		}
	}
	assert.Equal(t, 0.0, p.At(0, 0), "input plane is not modified")
}

func TestCropDims(t *testing.T) {
	w, h := CropDims(100, 50, 12)
	assert.Equal(t, 96, w)
	assert.Equal(t, 48, h)

	w, h = CropDims(10, 10, 0)
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)
}
