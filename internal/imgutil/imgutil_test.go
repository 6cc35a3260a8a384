package imgutil

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) * 255 / (width + height)),
				A: 255,
			})
		}
	}
	return img
}

func TestEncodeDetectLoad(t *testing.T) {
	img := createTestImage(40, 30)

	for _, format := range []string{FormatPNG, FormatJPEG, FormatBMP, FormatTIFF} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodeImage(img, format, 90)
			require.NoError(t, err)

			got, err := DetectFormat(data)
			require.NoError(t, err)
			assert.Equal(t, format, got)

			loaded, _, err := LoadImage(data)
			require.NoError(t, err)
			assert.Equal(t, img.Bounds(), loaded.Bounds())
		})
	}
}

func TestLosslessFormatsPreservePixels(t *testing.T) {
	img := createTestImage(16, 16)
	for _, format := range []string{FormatPNG, FormatBMP, FormatTIFF} {
		data, err := EncodeImage(img, format, 0)
		require.NoError(t, err)
		loaded, _, err := LoadImage(data)
		require.NoError(t, err)
		assert.Equal(t, img.Pix, ToRGBA(loaded).Pix, format)
	}
}

func TestDetectFormatRejectsText(t *testing.T) {
	_, err := DetectFormat([]byte("definitely not an image"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, _, err = LoadImage([]byte("definitely not an image"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestEncodeImageUnsupported(t *testing.T) {
	_, err := EncodeImage(createTestImage(4, 4), "gif", 0)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	// webp can be read but not written
	_, err = EncodeImage(createTestImage(4, 4), "webp", 0)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.png":      FormatPNG,
		"OUT.JPG":      FormatJPEG,
		"a/b/c.jpeg":   FormatJPEG,
		"scan.tif":     FormatTIFF,
		"legacy.bmp":   FormatBMP,
		"picture.webp": FormatWebP,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("noext")
	assert.Error(t, err)
}

func TestCompress(t *testing.T) {
	img := createTestImage(64, 64)
	out, err := Compress(img, 75)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())

	// smooth gradient stays close after compression
	diff := 0
	for i := range img.Pix {
		d := int(img.Pix[i]) - int(out.Pix[i])
		if d < 0 {
			d = -d
		}
		diff = max(diff, d)
	}
	assert.Less(t, diff, 40)
}

func TestCrop(t *testing.T) {
	img := createTestImage(10, 10)
	sub := img.SubImage(image.Rect(2, 3, 10, 10))

	out := Crop(sub, 4, 20)
	assert.Equal(t, image.Rect(0, 0, 4, 7), out.Bounds())
	assert.Equal(t, img.RGBAAt(2, 3), out.RGBAAt(0, 0))
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	img := createTestImage(8, 8)
	require.NoError(t, SaveImageToFile(img, FormatPNG, path, 0))

	loaded, format, err := LoadImageFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Pix, ToRGBA(loaded).Pix)
}
