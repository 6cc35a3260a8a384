// Package wavestego hides byte messages in color images so that they survive
// JPEG recompression.
//
// The message is protected with Reed-Solomon, stuffed so it contains no NUL
// bytes, and tiled as many times as the image allows. Every copy is written
// into the coarsest wavelet detail planes of the selected channels, one bit
// per block, as the sign of the block center relative to its neighbours.
// Decoding is blind: it needs the same Params but neither the cover nor the
// message length.
package wavestego

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/tuomas-lb/wavestego/internal/blocking"
	"github.com/tuomas-lb/wavestego/internal/colorspace"
	"github.com/tuomas-lb/wavestego/internal/dispatch"
	"github.com/tuomas-lb/wavestego/internal/ecc"
	"github.com/tuomas-lb/wavestego/internal/embed"
	"github.com/tuomas-lb/wavestego/internal/framing"
	"github.com/tuomas-lb/wavestego/internal/vote"
	"github.com/tuomas-lb/wavestego/internal/wavelet"
)

var (
	// ErrCapacity indicates the encoded message does not fit the image
	ErrCapacity = errors.New("message too long for image capacity")
	// ErrEncoding indicates the error correction code cannot encode the
	// message, including a redundancy above what one Reed-Solomon block holds
	ErrEncoding = errors.New("message encoding failed")
	// ErrMessageTooShort indicates the encoded message is shorter than the
	// shortest copy the decoder votes on
	ErrMessageTooShort = errors.New("message too short to be recovered")
	// ErrUncorrectable indicates the recovered codeword had too many errors.
	// Decode reports it through a nil Message rather than an error.
	ErrUncorrectable = errors.New("uncorrectable message")
	// ErrInvalidParams indicates Params failed validation
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrImageTooSmall indicates the image holds no whole block at the
	// requested level
	ErrImageTooSmall = errors.New("image too small for parameters")
)

// Params configures encoding and decoding. Both sides must use identical
// values; nothing about them is stored in the image.
type Params struct {
	// Alpha scales the perturbation of the block center
	Alpha float64 `toml:"alpha" json:"alpha" validate:"gte=0"`
	// BlockSize is the side of the square embedding blocks
	BlockSize int `toml:"block_size" json:"block_size" validate:"gte=3"`
	// Level is the wavelet decomposition depth; the payload goes into the
	// deepest level and the nominal perturbation is 2^Level
	Level int `toml:"level" json:"level" validate:"gte=1,lte=10"`
	// Wavelet names the transform: haar, db2, cdf97, dct or iwt53
	Wavelet string `toml:"wavelet" json:"wavelet" validate:"required"`
	// ColorSpace is the working color space; unknown names select YCrCb
	ColorSpace string `toml:"color_space" json:"color_space"`
	// UseChannels lists the channel indices that carry the message
	UseChannels []int `toml:"use_channels" json:"use_channels" validate:"required,min=1,max=3,unique,dive,gte=0,lte=2"`
	// Coefficients lists the detail planes that carry the message
	Coefficients []string `toml:"coefficients" json:"coefficients" validate:"required,min=1,max=3,unique,dive,oneof=da ad dd"`
	// ECCSymbols is the number of Reed-Solomon parity bytes per block. Values
	// above 254 leave no data in a block and fail with ErrEncoding.
	ECCSymbols int `toml:"ecc_symbols" json:"ecc_symbols" validate:"gte=0"`
	// ECC selects the error correction code: rs (default) or rep3
	ECC string `toml:"ecc" json:"ecc" validate:"omitempty,oneof=rs reed-solomon rep3 repetition3"`
	// Dispatch selects how copies are spread: tiled (default) or uniform
	Dispatch string `toml:"dispatch" json:"dispatch" validate:"omitempty,oneof=tiled uniform"`
	// Strategy selects the block embedding rule: mean (default) or
	// perimeter. Perimeter stores coefficient residues and needs the lossless
	// iwt53 transform over RGB.
	Strategy string `toml:"strategy" json:"strategy" validate:"omitempty,oneof=mean perimeter"`
	// Consolidation selects the voter: fragment (default) or mode
	Consolidation string `toml:"consolidation" json:"consolidation" validate:"omitempty,oneof=fragment mode"`
}

// DefaultParams returns the parameters used when nothing else is configured
func DefaultParams() Params {
	return Params{
		Alpha:         1,
		BlockSize:     3,
		Level:         2,
		Wavelet:       "haar",
		ColorSpace:    colorspace.YCrCb,
		UseChannels:   []int{0},
		Coefficients:  []string{wavelet.Horizontal, wavelet.Vertical, wavelet.Diagonal},
		ECCSymbols:    10,
		ECC:           "rs",
		Dispatch:      dispatch.ModeTiled,
		Strategy:      embed.StrategyMean,
		Consolidation: vote.MethodFragment,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks p and reports the first problem wrapped in ErrInvalidParams
func (p Params) Validate() error {
	if err := Validator().Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	tr, err := wavelet.Get(p.Wavelet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if _, err := embed.GetStrategy(p.Strategy, p.BlockSize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Strategy == embed.StrategyPerimeter {
		if tr.Name() != "iwt53" {
			return fmt.Errorf("%w: %s strategy needs the iwt53 wavelet, got %q",
				ErrInvalidParams, embed.StrategyPerimeter, p.Wavelet)
		}
		if colorspace.Normalize(p.ColorSpace) != colorspace.RGB {
			return fmt.Errorf("%w: %s strategy needs the RGB color space, got %q",
				ErrInvalidParams, embed.StrategyPerimeter, p.ColorSpace)
		}
	}
	for _, ch := range p.UseChannels {
		if colorspace.Unstable(p.ColorSpace, ch) {
			return fmt.Errorf("%w: %s channel %s does not survive 8-bit RGB",
				ErrInvalidParams, colorspace.Normalize(p.ColorSpace), colorspace.Channels(p.ColorSpace)[ch])
		}
	}
	return nil
}

// coder holds everything Params resolve to
type coder struct {
	params    Params
	transform wavelet.Transform
	strategy  embed.Strategy
	scheme    ecc.Scheme
	dispatch  dispatch.Dispatcher
	voter     vote.Voter
	space     string
	step      float64
}

func newCoder(p Params) (*coder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &coder{
		params: p,
		space:  colorspace.Normalize(p.ColorSpace),
		step:   float64(int(1) << p.Level),
	}

	var err error
	if c.transform, err = wavelet.Get(p.Wavelet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if c.strategy, err = embed.GetStrategy(p.Strategy, p.BlockSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	scheme, err := ecc.ParseScheme(p.ECC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if c.scheme, err = ecc.GetScheme(scheme, p.ECCSymbols); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if c.dispatch, err = dispatch.Get(p.Dispatch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if c.voter, err = vote.Get(p.Consolidation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return c, nil
}

// multiple is the side length every image dimension is cropped to
func (c *coder) multiple() int {
	return c.params.BlockSize << c.params.Level
}

func (c *coder) capacity(width, height int) dispatch.Capacity {
	return dispatch.GetCapacity(width, height, c.params.BlockSize, c.params.Level,
		len(c.params.Coefficients), c.strategy.BitsPerBlock(c.params.BlockSize))
}

// payloadLen is the number of bytes a message of n bytes occupies in one
// copy, terminator excluded
func (c *coder) payloadLen(n int) int {
	return framing.StuffedLen(c.scheme.EncodedLen(n))
}

// minMessageLen is the shortest message whose copy the voter accepts
func (c *coder) minMessageLen() int {
	n := 0
	for c.payloadLen(n) < vote.MinFragmentLen {
		n++
	}
	return n
}

// room is the space one terminated copy may use
func (c *coder) room(cp dispatch.Capacity) int {
	if c.params.Dispatch == dispatch.ModeUniform {
		return cp.PerPlane
	}
	return cp.Total
}

// CapacityInfo describes what an image can carry under given Params
type CapacityInfo struct {
	// Width and Height of the image after cropping
	Width  int `json:"width"`
	Height int `json:"height"`
	// BlocksPerPlane is the number of embedding blocks in one detail plane
	BlocksPerPlane int `json:"blocks_per_plane"`
	// PerPlane is the byte capacity of one detail plane
	PerPlane int `json:"per_plane"`
	// Total is the byte capacity over all selected detail planes
	Total int `json:"total"`
	// MinMessageBytes is the shortest message Decode can find again
	MinMessageBytes int `json:"min_message_bytes"`
	// MaxMessageBytes is the longest message that still fits once ECC,
	// stuffing and the terminator are added. It is 0 when even
	// MinMessageBytes does not fit.
	MaxMessageBytes int `json:"max_message_bytes"`
	// Copies is how many times a message of MaxMessageBytes is repeated
	Copies int `json:"copies"`
}

// Capacity reports the capacity of an image with the given bounds
func Capacity(bounds image.Rectangle, p Params) (*CapacityInfo, error) {
	c, err := newCoder(p)
	if err != nil {
		return nil, err
	}
	return c.capacityInfo(bounds.Dx(), bounds.Dy()), nil
}

func (c *coder) capacityInfo(width, height int) *CapacityInfo {
	w, h := blocking.CropDims(width, height, c.multiple())
	cp := c.capacity(w, h)
	room := c.room(cp)

	// largest n whose terminated copy fits
	maxLen := sort.Search(room+1, func(n int) bool {
		return c.payloadLen(n)+1 > room
	}) - 1
	minLen := c.minMessageLen()
	if maxLen < minLen || c.payloadLen(maxLen)+1 > room {
		maxLen = 0
	}

	copies := 0
	if maxLen > 0 {
		copies = room / (c.payloadLen(maxLen) + 1)
	}

	across, down := blocking.Grid(w>>c.params.Level, h>>c.params.Level, c.params.BlockSize)
	return &CapacityInfo{
		Width:           w,
		Height:          h,
		BlocksPerPlane:  across * down,
		PerPlane:        cp.PerPlane,
		Total:           cp.Total,
		MinMessageBytes: minLen,
		MaxMessageBytes: maxLen,
		Copies:          copies,
	}
}

// channels returns the used channel indices in ascending order without
// duplicates, which fixes the order parts are written and read
func (c *coder) channels() []int {
	ch := lo.Uniq(c.params.UseChannels)
	sort.Ints(ch)
	return ch
}
