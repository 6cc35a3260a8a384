package wavestego

import (
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
)

// DecodeResult is what Decode recovers
type DecodeResult struct {
	// Message is the recovered message, nil when it could not be corrected
	Message []byte
	// Consolidated is the voted copy before unstuffing and ECC, nil when no
	// copy was found
	Consolidated []byte
	// Raw is every extracted part trimmed to the plane capacity and joined
	// in channel then coefficient order
	Raw []byte
}

// Decode recovers a message from img without the cover. Failing to find or
// correct a message is not an error: Message is nil and the diagnostic
// buffers are still filled in.
func Decode(img image.Image, p Params) (*DecodeResult, error) {
	c, err := newCoder(p)
	if err != nil {
		return nil, err
	}
	return c.decode(img)
}

func (c *coder) decode(img image.Image) (*DecodeResult, error) {
	b := img.Bounds()
	w, h := blocking.CropDims(b.Dx(), b.Dy(), c.multiple())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d needs at least %d pixels per side",
			ErrImageTooSmall, b.Dx(), b.Dy(), c.multiple())
	}

	capacity := c.capacity(w, h)
	planes := colorspace.ToPlanes(imgutil.Crop(img, w, h), c.space)

	var parts [][]byte
	for _, ch := range c.channels() {
		got, err := c.extractChannel(planes[ch])
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		parts = append(parts, got...)
	}

	res := &DecodeResult{Raw: dispatch.Consolidate(parts, capacity.PerPlane)}

	voted, err := c.voter(res.Raw)
	if err != nil {
		slog.Debug("no message copy found", "raw", len(res.Raw), "error", err)
		return res, nil
	}
	res.Consolidated = voted

	msg, err := c.unframe(voted)
	if err != nil {
		slog.Debug("message not recovered", "consolidated", len(voted), "error", err)
		return res, nil
	}
	res.Message = msg
	return res, nil
}

// extractChannel reads one part per coefficient from the coarsest level
func (c *coder) extractChannel(ch *plane.Plane) ([][]byte, error) {
	d, err := c.transform.Forward(ch, c.params.Level)
	if err != nil {
		return nil, err
	}

	coarsest := d.Coarsest()
	parts := make([][]byte, 0, len(c.params.Coefficients))
	for _, label := range c.params.Coefficients {
		bits := embed.ExtractPlane(coarsest[label], c.params.BlockSize, c.strategy)
		parts = append(parts, bitstream.BitsToBytes(bits))
	}
	return parts, nil
}

// unframe unstuffs and ECC decodes a voted copy
func (c *coder) unframe(voted []byte) ([]byte, error) {
	codeword, err := framing.Unstuff(voted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUncorrectable, err)
	}
	msg, err := c.scheme.Decode(codeword)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUncorrectable, err)
	}
	return msg, nil
}

// DecodeBytes recovers a message from an encoded image
func DecodeBytes(input []byte, p Params) (*DecodeResult, error) {
	img, _, err := imgutil.LoadImage(input)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return Decode(img, p)
}

// DecodeFile recovers a message from the image at path
func DecodeFile(path string, p Params) (*DecodeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return DecodeBytes(data, p)
}
