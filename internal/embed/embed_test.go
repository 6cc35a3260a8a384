package embed

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuomas-lb/wavestego/internal/bitstream"
	"github.com/tuomas-lb/wavestego/internal/blocking"
	"github.com/tuomas-lb/wavestego/internal/plane"
)

func sampleBlock() blocking.Block {
	return blocking.Block{
		Pix: []float64{
			175, 247, 97,
			124, 198, 215,
			98, 42, 15,
		},
		Size: 3,
	}
}

func TestMeanReferenceEmbedExtract(t *testing.T) {
	tests := []struct {
		name  string
		bit   bool
		step  float64
		alpha float64
	}{
		{name: "one level 2", bit: true, step: 4, alpha: 1},
		{name: "zero level 2", bit: false, step: 4, alpha: 1},
		{name: "one small alpha", bit: true, step: 2, alpha: 0.1},
		{name: "zero deep level", bit: false, step: 32, alpha: 2},
	}

	s := MeanReference{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBlock()
			s.Embed(b, []bool{tt.bit}, tt.step, tt.alpha)
			assert.Equal(t, []bool{tt.bit}, s.Extract(b))
		})
	}
}

func TestMeanReferenceOnlyTouchesCenter(t *testing.T) {
	b := sampleBlock()
	orig := append([]float64(nil), b.Pix...)
	MeanReference{}.Embed(b, []bool{true}, 4, 1)

	for i := range b.Pix {
		if i == b.Center() {
			continue
		}
		assert.Equal(t, orig[i], b.Pix[i])
	}
	// ring mean is 1013/8
	assert.InDelta(t, 1013.0/8.0+4.0, b.Pix[b.Center()], 1e-9)
}

func TestMeanReferenceTieIsZero(t *testing.T) {
	b := blocking.Block{Pix: []float64{5, 5, 5, 5, 5, 5, 5, 5, 5}, Size: 3}
	assert.Equal(t, []bool{false}, MeanReference{}.Extract(b))
}

func TestMeanReferenceLargerBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := blocking.Block{Pix: make([]float64, 25), Size: 5}
	for i := range b.Pix {
		b.Pix[i] = rng.Float64()*20 - 10
	}
	MeanReference{}.Embed(b, []bool{true}, 8, 1)
	assert.Equal(t, []bool{true}, MeanReference{}.Extract(b))
	assert.Equal(t, 12, b.Center())
}

func TestPerimeterEmbedExtract(t *testing.T) {
	symbols := []uint8{3, 1, 2, 2, 0, 1, 3, 0}
	bits := bitstream.SymbolsToBits(symbols)

	b := sampleBlock()
	p := Perimeter{}
	require.Equal(t, 16, p.BitsPerBlock(3))

	p.Embed(b, bits, 0, 0)
	assert.Equal(t, bits, p.Extract(b))
	assert.Equal(t, symbols, bitstream.BitsToSymbols(p.Extract(b)))
}

func TestPerimeterNegativeCoefficients(t *testing.T) {
	b := blocking.Block{
		Pix:  []float64{-3.4, -1.2, 7.7, -8.5, -2.2, 0.4, 11.1, -6.6, 2.5},
		Size: 3,
	}
	bits := bitstream.SymbolsToBits([]uint8{0, 1, 2, 3, 3, 2, 1, 0})
	Perimeter{}.Embed(b, bits, 0, 0)
	assert.Equal(t, bits, Perimeter{}.Extract(b))
}

func TestEmbedPlaneRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := plane.New(31, 22)
	for i := range p.Pix {
		p.Pix[i] = rng.Float64()*100 - 50
	}

	tests := []struct {
		name     string
		strategy string
		size     int
	}{
		{name: "mean 3", strategy: StrategyMean, size: 3},
		{name: "mean 5", strategy: StrategyMean, size: 5},
		{name: "perimeter", strategy: StrategyPerimeter, size: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := GetStrategy(tt.strategy, tt.size)
			require.NoError(t, err)

			across, down := blocking.Grid(p.Width, p.Height, tt.size)
			n := across * down * s.BitsPerBlock(tt.size)
			bits := make([]bool, n)
			for i := range bits {
				bits[i] = rng.Intn(2) == 1
			}

			out := EmbedPlane(p, bits, tt.size, s, 4, 1)
			assert.Equal(t, bits, ExtractPlane(out, tt.size, s))
			assert.Equal(t, p.Width, out.Width)
			assert.Equal(t, p.Height, out.Height)
		})
	}
}

func TestEmbedPlaneShortPayload(t *testing.T) {
	p := plane.New(9, 9)
	out := EmbedPlane(p, []bool{true}, 3, MeanReference{}, 2, 1)

	got := ExtractPlane(out, 3, MeanReference{})
	require.Len(t, got, 9)
	assert.True(t, got[0])
	// untouched flat blocks read as 0
	for _, b := range got[1:] {
		assert.False(t, b)
	}
}

func TestGetStrategyErrors(t *testing.T) {
	_, err := GetStrategy("lsb", 3)
	assert.True(t, errors.Is(err, ErrUnsupportedStrategy))

	_, err = GetStrategy(StrategyPerimeter, 5)
	assert.True(t, errors.Is(err, ErrBlockSize))

	_, err = GetStrategy(StrategyMean, 2)
	assert.True(t, errors.Is(err, ErrBlockSize))
}
