package server

import "github.com/tuomas-lb/wavestego/pkg/wavestego"

// ParamsForm carries optional overrides of the server's encoder parameters.
// Unset fields keep the configured value.
type ParamsForm struct {
	Alpha         *float64 `form:"alpha" binding:"omitempty,gte=0"`
	BlockSize     *int     `form:"block_size" binding:"omitempty,gte=3"`
	Level         *int     `form:"level" binding:"omitempty,gte=1,lte=10"`
	Wavelet       *string  `form:"wavelet"`
	ColorSpace    *string  `form:"color_space"`
	UseChannels   []int    `form:"use_channels"`
	Coefficients  []string `form:"coefficients"`
	ECCSymbols    *int     `form:"ecc_symbols" binding:"omitempty,gte=0"`
	ECC           *string  `form:"ecc"`
	Dispatch      *string  `form:"dispatch"`
	Strategy      *string  `form:"strategy"`
	Consolidation *string  `form:"consolidation"`
}

// Apply returns base with the fields set in f replaced
func (f ParamsForm) Apply(base wavestego.Params) wavestego.Params {
	p := base
	if f.Alpha != nil {
		p.Alpha = *f.Alpha
	}
	if f.BlockSize != nil {
		p.BlockSize = *f.BlockSize
	}
	if f.Level != nil {
		p.Level = *f.Level
	}
	if f.Wavelet != nil {
		p.Wavelet = *f.Wavelet
	}
	if f.ColorSpace != nil {
		p.ColorSpace = *f.ColorSpace
	}
	if len(f.UseChannels) > 0 {
		p.UseChannels = f.UseChannels
	}
	if len(f.Coefficients) > 0 {
		p.Coefficients = f.Coefficients
	}
	if f.ECCSymbols != nil {
		p.ECCSymbols = *f.ECCSymbols
	}
	if f.ECC != nil {
		p.ECC = *f.ECC
	}
	if f.Dispatch != nil {
		p.Dispatch = *f.Dispatch
	}
	if f.Strategy != nil {
		p.Strategy = *f.Strategy
	}
	if f.Consolidation != nil {
		p.Consolidation = *f.Consolidation
	}
	return p
}

// EncodeForm is the non-file part of an encode request
type EncodeForm struct {
	ParamsForm
	Message      string `form:"message" binding:"required"`
	OutputFormat string `form:"output_format" binding:"omitempty,oneof=png jpeg jpg bmp tiff"`
	JPEGQuality  int    `form:"jpeg_quality" binding:"omitempty,gte=1,lte=100"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// DecodeResponse reports a decode attempt. Byte fields are base64 encoded.
type DecodeResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Payload      []byte `json:"payload,omitempty"`
	Consolidated []byte `json:"consolidated,omitempty"`
	Raw          []byte `json:"raw"`
	RequestID    string `json:"request_id,omitempty"`
}

// CapacityResponse reports what an uploaded image can carry
type CapacityResponse struct {
	Success bool `json:"success"`
	*wavestego.CapacityInfo
	RequestID string `json:"request_id,omitempty"`
}
