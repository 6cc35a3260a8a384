package wavestego

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/tuomas-lb/wavestego/internal/bitstream"
	"github.com/tuomas-lb/wavestego/internal/blocking"
	"github.com/tuomas-lb/wavestego/internal/colorspace"
	"github.com/tuomas-lb/wavestego/internal/dispatch"
	"github.com/tuomas-lb/wavestego/internal/embed"
	"github.com/tuomas-lb/wavestego/internal/framing"
	"github.com/tuomas-lb/wavestego/internal/imgutil"
	"github.com/tuomas-lb/wavestego/internal/plane"
	"github.com/tuomas-lb/wavestego/internal/vote"
)

// EncodeResult is what Encode produces
type EncodeResult struct {
	// Original is the cover cropped to the dimensions that were embedded into
	Original *image.RGBA
	// Stego is the cover with the message embedded, same size as Original
	Stego *image.RGBA
	// Parts are the dispatched bytes in the order of Params.Coefficients.
	// Every used channel carries the same parts.
	Parts [][]byte
}

// Encode embeds msg into img. img is never modified.
//
// The image is cropped to a multiple of BlockSize*2^Level, the message is
// ECC encoded and stuffed, and the result is dispatched across the selected
// coefficients. Capacity is checked before any pixel is transformed.
func Encode(img image.Image, msg []byte, p Params) (*EncodeResult, error) {
	c, err := newCoder(p)
	if err != nil {
		return nil, err
	}
	return c.encode(img, msg)
}

func (c *coder) encode(img image.Image, msg []byte) (*EncodeResult, error) {
	b := img.Bounds()
	w, h := blocking.CropDims(b.Dx(), b.Dy(), c.multiple())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d needs at least %d pixels per side",
			ErrImageTooSmall, b.Dx(), b.Dy(), c.multiple())
	}

	codeword, err := c.scheme.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	payload := framing.Stuff(codeword)
	if len(payload) < vote.MinFragmentLen {
		return nil, fmt.Errorf("%w: %d byte message encodes to %d bytes, copies need at least %d",
			ErrMessageTooShort, len(msg), len(payload), vote.MinFragmentLen)
	}

	capacity := c.capacity(w, h)
	parts, err := c.dispatch(payload, capacity)
	if err != nil {
		if errors.Is(err, dispatch.ErrCapacity) {
			return nil, fmt.Errorf("%w: %d byte message needs %d bytes, image holds %d",
				ErrCapacity, len(msg), len(payload)+1, c.room(capacity))
		}
		return nil, err
	}
	slog.Debug("dispatched payload",
		"message", len(msg),
		"payload", len(payload),
		"per_plane", capacity.PerPlane,
		"parts", len(parts))

	original := imgutil.Crop(img, w, h)
	planes := colorspace.ToPlanes(original, c.space)
	for _, ch := range c.channels() {
		out, err := c.embedChannel(planes[ch], parts)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		planes[ch] = out
	}

	return &EncodeResult{
		Original: original,
		Stego:    colorspace.FromPlanes(planes, c.space),
		Parts:    parts,
	}, nil
}

// embedChannel writes parts[i] into the coarsest detail plane named by
// Coefficients[i] and reconstructs the channel
func (c *coder) embedChannel(ch *plane.Plane, parts [][]byte) (*plane.Plane, error) {
	d, err := c.transform.Forward(ch, c.params.Level)
	if err != nil {
		return nil, err
	}

	coarsest := d.Coarsest()
	for i, label := range c.params.Coefficients {
		if i >= len(parts) {
			break
		}
		coarsest[label] = embed.EmbedPlane(coarsest[label], bitstream.BytesToBits(parts[i]),
			c.params.BlockSize, c.strategy, c.step, c.params.Alpha)
	}

	out, err := c.transform.Inverse(d)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeOptions controls how EncodeBytes and EncodeFile write the stego image
type EncodeOptions struct {
	// OutputFormat is png, jpeg, bmp or tiff. Empty selects png.
	OutputFormat string
	// JPEGQuality applies when OutputFormat is jpeg
	JPEGQuality int
}

// DefaultEncodeOptions returns lossless PNG output
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		OutputFormat: imgutil.FormatPNG,
		JPEGQuality:  imgutil.DefaultJPEGQuality,
	}
}

// EncodeBytes embeds msg into an encoded image and returns the encoded stego
// image
func EncodeBytes(input, msg []byte, p Params, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if input == nil {
		return nil, fmt.Errorf("input data required")
	}

	img, _, err := imgutil.LoadImage(input)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	res, err := Encode(img, msg, p)
	if err != nil {
		return nil, err
	}

	format := opts.OutputFormat
	if format == "" {
		format = imgutil.FormatPNG
	}
	return imgutil.EncodeImage(res.Stego, format, opts.JPEGQuality)
}

// EncodeFile embeds msg into the image at inputPath and writes the stego
// image to outputPath. An empty OutputFormat is derived from outputPath.
func EncodeFile(inputPath, outputPath string, msg []byte, p Params, opts *EncodeOptions) error {
	if opts == nil {
		opts = DefaultEncodeOptions()
		opts.OutputFormat = ""
	}

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	o := *opts
	if o.OutputFormat == "" {
		if f, err := imgutil.FormatFromPath(outputPath); err == nil {
			o.OutputFormat = f
		}
	}

	outputData, err := EncodeBytes(inputData, msg, p, &o)
	if err != nil {
		return err
	}

	return os.WriteFile(outputPath, outputData, 0644)
}
