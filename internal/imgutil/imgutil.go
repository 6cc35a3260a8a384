// Package imgutil reads and writes cover and stego images.
package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image formats understood by EncodeImage
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

// DefaultJPEGQuality is used when a JPEG is written without a quality
const DefaultJPEGQuality = 95

var (
	// ErrUnsupportedFormat indicates a format that cannot be read or written
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var mimeFormats = map[string]string{
	"image/png":  FormatPNG,
	"image/jpeg": FormatJPEG,
	"image/bmp":  FormatBMP,
	"image/tiff": FormatTIFF,
	"image/webp": FormatWebP,
}

// DetectFormat sniffs the image format of data
func DetectFormat(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if f, ok := mimeFormats[m.String()]; ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
}

// FormatFromPath derives the output format from a file extension
func FormatFromPath(path string) (string, error) {
	return NormalizeFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// NormalizeFormat maps extensions and MIME types to a format name
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "png", "image/png":
		return FormatPNG, nil
	case "jpg", "jpeg", "image/jpeg":
		return FormatJPEG, nil
	case "bmp", "image/bmp":
		return FormatBMP, nil
	case "tif", "tiff", "image/tiff":
		return FormatTIFF, nil
	case "webp", "image/webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadImageFromFile loads an image from a file path
// Returns the image, format string, and any error
func LoadImageFromFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	return LoadImage(data)
}

// LoadImage loads an image from byte data after checking its content type
// Returns the image, format string, and any error
func LoadImage(data []byte) (image.Image, string, error) {
	if _, err := DetectFormat(data); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// SaveImageToFile saves an image to a file
func SaveImageToFile(img image.Image, format, path string, quality int) error {
	data, err := EncodeImage(img, format, quality)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EncodeImage encodes an image to the specified format. quality only
// applies to JPEG; values outside 1..100 select DefaultJPEGQuality.
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	f, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode BMP: %w", err)
		}
	case FormatTIFF:
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("failed to encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, f)
	}

	return buf.Bytes(), nil
}

// Compress runs img through JPEG at quality and decodes the result, which
// is how stego images are attacked in evaluation
func Compress(img image.Image, quality int) (*image.RGBA, error) {
	data, err := EncodeImage(img, FormatJPEG, quality)
	if err != nil {
		return nil, err
	}
	out, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode JPEG: %w", err)
	}
	return ToRGBA(out), nil
}

// ToRGBA copies img into a new RGBA image anchored at the origin
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Crop copies the top-left width x height region of img
func Crop(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	width = min(width, b.Dx())
	height = min(height, b.Dy())
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
