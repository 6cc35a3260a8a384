package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuomas-lb/wavestego/internal/config"
	"github.com/tuomas-lb/wavestego/internal/imgutil"
	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Default().Server, wavestego.DefaultParams(), logger).Handler()
}

func coverPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(40 + x*170/width),
				G: uint8(40 + y*170/height),
				B: uint8(40 + (x+y)*170/(width+height)),
				A: 255,
			})
		}
	}
	data, err := imgutil.EncodeImage(img, imgutil.FormatPNG, 0)
	require.NoError(t, err)
	return data
}

// multipartRequest builds a POST with an optional image file and form fields
func multipartRequest(t *testing.T, path string, img []byte, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if img != nil {
		part, err := w.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestIDPassthrough(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := serve(newTestServer(), req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = serve(newTestServer(), req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestEncodeDecode(t *testing.T) {
	h := newTestServer()
	message := "hello over http"

	rec := serve(h, multipartRequest(t, "/api/v1/stego/encode", coverPNG(t, 192, 192), map[string][]string{
		"message": {message},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Stego-PSNR"))
	assert.Equal(t, "84", rec.Header().Get("X-Stego-Capacity"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cover_stego.png")

	stego := rec.Body.Bytes()
	rec = serve(h, multipartRequest(t, "/api/v1/stego/decode", stego, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, message, resp.Message)
	assert.Equal(t, []byte(message), resp.Payload)
	assert.Len(t, resp.Raw, 96)
}

func TestEncodeDecodeWithOverrides(t *testing.T) {
	h := newTestServer()
	fields := map[string][]string{
		"wavelet":      {"db2"},
		"use_channels": {"0", "2"},
		"coefficients": {"dd", "da"},
		"ecc_symbols":  {"8"},
	}

	encFields := map[string][]string{"message": {"custom parameters"}}
	for k, v := range fields {
		encFields[k] = v
	}
	rec := serve(h, multipartRequest(t, "/api/v1/stego/encode", coverPNG(t, 192, 192), encFields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, multipartRequest(t, "/api/v1/stego/decode", rec.Body.Bytes(), fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp DecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "custom parameters", resp.Message)
}

func TestEncodeErrors(t *testing.T) {
	h := newTestServer()
	cover := coverPNG(t, 48, 48)

	tests := []struct {
		name   string
		img    []byte
		fields map[string][]string
		status int
	}{
		{"missing image", nil, map[string][]string{"message": {"hi"}}, http.StatusBadRequest},
		{"missing message", cover, nil, http.StatusBadRequest},
		{"not an image", []byte("plain text"), map[string][]string{"message": {"hi"}}, http.StatusUnsupportedMediaType},
		{"too long", cover, map[string][]string{"message": {strings.Repeat("x", 100)}}, http.StatusUnprocessableEntity},
		{"bad level", cover, map[string][]string{"message": {"hi"}, "level": {"0"}}, http.StatusBadRequest},
		{"bad wavelet", cover, map[string][]string{"message": {"hi"}, "wavelet": {"sym20"}}, http.StatusBadRequest},
		{"bad format", cover, map[string][]string{"message": {"hi"}, "output_format": {"gif"}}, http.StatusBadRequest},
		{"too much parity", cover, map[string][]string{"message": {"hi there"}, "ecc_symbols": {"300"}}, http.StatusUnprocessableEntity},
		{"too short", cover, map[string][]string{"message": {"hi"}, "ecc_symbols": {"0"}}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, multipartRequest(t, "/api/v1/stego/encode", tt.img, tt.fields))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestDecodeCleanImage(t *testing.T) {
	rec := serve(newTestServer(), multipartRequest(t, "/api/v1/stego/decode", coverPNG(t, 192, 192), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Message)
	assert.NotEmpty(t, resp.Raw)
}

func TestCapacity(t *testing.T) {
	rec := serve(newTestServer(), multipartRequest(t, "/api/v1/stego/capacity", coverPNG(t, 200, 192), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success         bool `json:"success"`
		Width           int  `json:"width"`
		PerPlane        int  `json:"per_plane"`
		MaxMessageBytes int  `json:"max_message_bytes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 192, resp.Width)
	assert.Equal(t, 32, resp.PerPlane)
	assert.Equal(t, 84, resp.MaxMessageBytes)
}
