package server

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tuomas-lb/wavestego/internal/imgutil"
	"github.com/tuomas-lb/wavestego/internal/metrics"
	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

// Version is reported by the health check
const Version = "1.0.0"

// StegoHandler serves the /stego routes
type StegoHandler struct {
	params    wavestego.Params
	maxUpload int64
}

// NewStegoHandler returns a handler that starts every request from params
func NewStegoHandler(params wavestego.Params, maxUpload int64) *StegoHandler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &StegoHandler{params: params, maxUpload: maxUpload}
}

// HealthCheck reports that the service is up
func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": Version,
	})
}

func (h *StegoHandler) fail(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, ErrorResponse{
		Success:   false,
		Message:   fmt.Sprintf(format, args...),
		RequestID: c.GetString(requestIDKey),
	})
}

// statusFor maps library errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, wavestego.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, wavestego.ErrCapacity), errors.Is(err, wavestego.ErrImageTooSmall),
		errors.Is(err, wavestego.ErrEncoding), errors.Is(err, wavestego.ErrMessageTooShort):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imgutil.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// readImage parses the multipart form and decodes the "image" file
func (h *StegoHandler) readImage(c *gin.Context) (image.Image, string, bool) {
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(c, http.StatusBadRequest, "Failed to parse form: %v", err)
		return nil, "", false
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Image file is required")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to read image: %v", err)
		return nil, "", false
	}

	img, _, err := imgutil.LoadImage(data)
	if err != nil {
		h.fail(c, statusFor(err), "Failed to load image: %v", err)
		return nil, "", false
	}
	return img, header.Filename, true
}

// Encode embeds the form message into the uploaded image and streams the
// stego image back. PSNR and capacity travel in X-Stego-* headers.
func (h *StegoHandler) Encode(c *gin.Context) {
	img, filename, ok := h.readImage(c)
	if !ok {
		return
	}

	var form EncodeForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid parameters: %v", err)
		return
	}
	params := form.Apply(h.params)

	res, err := wavestego.Encode(img, []byte(form.Message), params)
	if err != nil {
		h.fail(c, statusFor(err), "Failed to embed message: %v", err)
		return
	}

	format := imgutil.FormatPNG
	if form.OutputFormat != "" {
		if format, err = imgutil.NormalizeFormat(form.OutputFormat); err != nil {
			h.fail(c, http.StatusBadRequest, "Invalid output format: %v", err)
			return
		}
	}
	out, err := imgutil.EncodeImage(res.Stego, format, form.JPEGQuality)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to encode image: %v", err)
		return
	}

	info, err := wavestego.Capacity(res.Stego.Bounds(), params)
	if err != nil {
		h.fail(c, statusFor(err), "Failed to calculate capacity: %v", err)
		return
	}
	diff := metrics.Compare(res.Original, res.Stego)

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	contentType := "image/" + format
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_stego.%s", base, format))
	c.Header("X-Stego-PSNR", strconv.FormatFloat(diff.PSNR, 'f', 2, 64))
	c.Header("X-Stego-Capacity", strconv.Itoa(info.MaxMessageBytes))
	c.Header("X-Stego-Copies", strconv.Itoa(info.Copies))
	c.Data(http.StatusOK, contentType, out)
}

// Decode reads a message from the uploaded image. A missing message is not
// an error: success is false and the raw buffers are still returned.
func (h *StegoHandler) Decode(c *gin.Context) {
	img, _, ok := h.readImage(c)
	if !ok {
		return
	}

	var form ParamsForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid parameters: %v", err)
		return
	}

	res, err := wavestego.Decode(img, form.Apply(h.params))
	if err != nil {
		h.fail(c, statusFor(err), "Failed to decode: %v", err)
		return
	}

	resp := DecodeResponse{
		Success:      res.Message != nil,
		Payload:      res.Message,
		Consolidated: res.Consolidated,
		Raw:          res.Raw,
		RequestID:    c.GetString(requestIDKey),
	}
	if res.Message != nil {
		resp.Message = string(res.Message)
	}
	c.JSON(http.StatusOK, resp)
}

// Capacity reports what the uploaded image can carry
func (h *StegoHandler) Capacity(c *gin.Context) {
	img, _, ok := h.readImage(c)
	if !ok {
		return
	}

	var form ParamsForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid parameters: %v", err)
		return
	}

	info, err := wavestego.Capacity(img.Bounds(), form.Apply(h.params))
	if err != nil {
		h.fail(c, statusFor(err), "Failed to calculate capacity: %v", err)
		return
	}
	c.JSON(http.StatusOK, CapacityResponse{
		Success:      true,
		CapacityInfo: info,
		RequestID:    c.GetString(requestIDKey),
	})
}
