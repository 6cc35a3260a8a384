// Package colorspace converts RGB images to three float64 channel planes in
// a chosen color space and back.
//
// Channel values use the 8-bit scaling OpenCV applies for each space, so
// the embedding strength means the same thing whichever space is chosen.
// Planes stay in float64 until the final conversion back to RGB, which
// clamps and rounds once.
package colorspace

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tuomas-lb/wavestego/internal/plane"
)

// Supported color spaces
const (
	RGB   = "RGB"
	YCrCb = "YCrCb"
	HSV   = "HSV"
	HLS   = "HLS"
	Lab   = "Lab"
	Luv   = "Luv"
	YUV   = "YUV"
	XYZ   = "XYZ"
)

// Default is used for names outside the supported set
const Default = YCrCb

// converter maps one 8-bit RGB triple (as floats) to a channel triple and
// back
type converter struct {
	channels [3]string
	forward  func(r, g, b float64) (float64, float64, float64)
	inverse  func(c0, c1, c2 float64) (float64, float64, float64)
}

var converters = map[string]converter{
	RGB: {
		channels: [3]string{"R", "G", "B"},
		forward:  func(r, g, b float64) (float64, float64, float64) { return r, g, b },
		inverse:  func(r, g, b float64) (float64, float64, float64) { return r, g, b },
	},
	YCrCb: {channels: [3]string{"Y", "Cr", "Cb"}, forward: rgbToYCrCb, inverse: yCrCbToRGB},
	YUV:   {channels: [3]string{"Y", "U", "V"}, forward: rgbToYUV, inverse: yuvToRGB},
	XYZ:   {channels: [3]string{"X", "Y", "Z"}, forward: rgbToXYZ, inverse: xyzToRGB},
	HSV:   {channels: [3]string{"H", "S", "V"}, forward: rgbToHSV, inverse: hsvToRGB},
	HLS:   {channels: [3]string{"H", "L", "S"}, forward: rgbToHLS, inverse: hlsToRGB},
	Lab:   {channels: [3]string{"L", "a", "b"}, forward: rgbToLab, inverse: labToRGB},
	Luv:   {channels: [3]string{"L", "u", "v"}, forward: rgbToLuv, inverse: luvToRGB},
}

// Names lists the supported color spaces
func Names() []string {
	return []string{RGB, YCrCb, HSV, HLS, Lab, Luv, YUV, XYZ}
}

// Normalize returns the canonical spelling of name, or Default when name is
// not a supported color space. Matching ignores case.
func Normalize(name string) string {
	for _, n := range Names() {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return Default
}

// Supported reports whether name is a known color space
func Supported(name string) bool {
	for _, n := range Names() {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// unstable lists the channels whose values 8-bit RGB cannot hold on to.
// Hue is undefined for grays and jumps at the 0/180 wrap; HLS saturation
// is undefined near black and white.
var unstable = map[string][]int{
	HSV: {0},
	HLS: {0, 2},
}

// Unstable reports whether channel ch of space loses small changes when
// the planes are converted back to 8-bit RGB, so nothing embedded in it
// can be read again
func Unstable(space string, ch int) bool {
	for _, c := range unstable[Normalize(space)] {
		if c == ch {
			return true
		}
	}
	return false
}

// Channels returns the channel names of space in plane order
func Channels(space string) [3]string {
	return converters[Normalize(space)].channels
}

// ToPlanes converts img into three channel planes of space. Colors are taken
// unpremultiplied, so translucent pixels keep their color and alpha is
// dropped.
func ToPlanes(img image.Image, space string) []*plane.Plane {
	conv := converters[Normalize(space)]
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	planes := []*plane.Plane{plane.New(width, height), plane.New(width, height), plane.New(width, height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			c0, c1, c2 := conv.forward(float64(c.R), float64(c.G), float64(c.B))
			idx := y*width + x
			planes[0].Pix[idx] = c0
			planes[1].Pix[idx] = c1
			planes[2].Pix[idx] = c2
		}
	}
	return planes
}

// FromPlanes converts three channel planes of space back to an opaque RGB
// image
func FromPlanes(planes []*plane.Plane, space string) *image.RGBA {
	conv := converters[Normalize(space)]
	width, height := planes[0].Width, planes[0].Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := conv.inverse(planes[0].At(x, y), planes[1].At(x, y), planes[2].At(x, y))
			img.SetRGBA(x, y, color.RGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: 255})
		}
	}
	return img
}

// clamp clamps v to [0, 255] and rounds to the nearest integer
func clamp(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// BT.601, as JPEG uses it

func rgbToYCrCb(r, g, b float64) (float64, float64, float64) {
	y := 0.299*r + 0.587*g + 0.114*b
	cb := -0.168736*r - 0.331264*g + 0.5*b + 128.0
	cr := 0.5*r - 0.418688*g - 0.081312*b + 128.0
	return y, cr, cb
}

func yCrCbToRGB(y, cr, cb float64) (float64, float64, float64) {
	cb -= 128.0
	cr -= 128.0
	return y + 1.402*cr, y - 0.344136*cb - 0.714136*cr, y + 1.772*cb
}

func rgbToYUV(r, g, b float64) (float64, float64, float64) {
	y := 0.299*r + 0.587*g + 0.114*b
	return y, 0.492*(b-y) + 128.0, 0.877*(r-y) + 128.0
}

func yuvToRGB(y, u, v float64) (float64, float64, float64) {
	b := y + (u-128.0)/0.492
	r := y + (v-128.0)/0.877
	g := (y - 0.299*r - 0.114*b) / 0.587
	return r, g, b
}

// XYZ works on linear 8-bit values without gamma decoding

func rgbToXYZ(r, g, b float64) (float64, float64, float64) {
	return colorful.LinearRgbToXyz(r, g, b)
}

func xyzToRGB(x, y, z float64) (float64, float64, float64) {
	return colorful.XyzToLinearRgb(x, y, z)
}

func unit(r, g, b float64) colorful.Color {
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}
}

func scaled(c colorful.Color) (float64, float64, float64) {
	return c.R * 255, c.G * 255, c.B * 255
}

// hue wraps a half-degree hue back into [0, 360) degrees
func hue(h float64) float64 {
	deg := math.Mod(h*2, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func rgbToHSV(r, g, b float64) (float64, float64, float64) {
	h, s, v := unit(r, g, b).Hsv()
	return h / 2, s * 255, v * 255
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	return scaled(colorful.Hsv(hue(h), s/255, v/255))
}

func rgbToHLS(r, g, b float64) (float64, float64, float64) {
	h, s, l := unit(r, g, b).Hsl()
	return h / 2, l * 255, s * 255
}

func hlsToRGB(h, l, s float64) (float64, float64, float64) {
	return scaled(colorful.Hsl(hue(h), s/255, l/255))
}

func rgbToLab(r, g, b float64) (float64, float64, float64) {
	l, a, bb := unit(r, g, b).Lab()
	return l * 255, a*100 + 128, bb*100 + 128
}

func labToRGB(l, a, b float64) (float64, float64, float64) {
	return scaled(colorful.Lab(l/255, (a-128)/100, (b-128)/100))
}

func rgbToLuv(r, g, b float64) (float64, float64, float64) {
	l, u, v := unit(r, g, b).Luv()
	return l * 255, (u*100 + 134) * 255 / 354, (v*100 + 140) * 255 / 262
}

func luvToRGB(l, u, v float64) (float64, float64, float64) {
	return scaled(colorful.Luv(l/255, (u*354/255-134)/100, (v*262/255-140)/100))
}
