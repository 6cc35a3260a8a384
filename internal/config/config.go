// Package config loads the TOML file shared by the CLI, the evaluation
// harness and the server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

// DefaultSecret is the message embedded by the evaluation harness
const DefaultSecret = "Lorem ipsum dolor sit amet"

var (
	// ErrInvalidConfig indicates a config file that parsed but failed
	// validation
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the root of the config file
type Config struct {
	Encoder     wavestego.Params `toml:"encoder" validate:"required"`
	Directories Directories      `toml:"directories"`
	Images      Images           `toml:"images"`
	Evaluation  Evaluation       `toml:"evaluation"`
	Server      Server           `toml:"server"`
}

// Directories holds the input and output locations
type Directories struct {
	Images string `toml:"images"`
	Output string `toml:"output"`
}

// Images lists the cover images, relative to Directories.Images
type Images struct {
	ImageFiles []string `toml:"image_files" validate:"dive,required"`
}

// Evaluation configures the embed, compress and decode harness
type Evaluation struct {
	// Secret is the message embedded into every image
	Secret string `toml:"secret" validate:"required"`
	// Qualities are the JPEG qualities each stego image is compressed at
	Qualities []int `toml:"qualities" validate:"required,min=1,dive,gte=1,lte=100"`
	// Workers bounds the number of images processed at once. 0 uses one
	// worker per CPU.
	Workers int `toml:"workers" validate:"gte=0"`
	// Sweep lists parameter values to try on top of the encoder section
	Sweep Sweep `toml:"sweep"`
}

// Sweep holds alternative values for encoder parameters. Every combination
// of the non-empty lists is evaluated; an empty list keeps the encoder
// value.
type Sweep struct {
	Alpha        []float64  `toml:"alpha" validate:"dive,gte=0"`
	ECCSymbols   []int      `toml:"ecc_symbols" validate:"dive,gte=0,lt=255"`
	Level        []int      `toml:"level" validate:"dive,gte=1"`
	BlockSize    []int      `toml:"block_size" validate:"dive,gte=3"`
	Wavelet      []string   `toml:"wavelet"`
	ColorSpace   []string   `toml:"color_space"`
	UseChannels  [][]int    `toml:"use_channels"`
	Coefficients [][]string `toml:"coefficients"`
}

// Server configures the HTTP API
type Server struct {
	Addr         string   `toml:"addr"`
	AllowOrigins []string `toml:"allow_origins"`
	// MaxUploadMB bounds multipart uploads
	MaxUploadMB int64 `toml:"max_upload_mb" validate:"gte=0"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Encoder: wavestego.DefaultParams(),
		Directories: Directories{
			Images: "images",
			Output: "output",
		},
		Evaluation: Evaluation{
			Secret:    DefaultSecret,
			Qualities: []int{95, 75, 55},
		},
		Server: Server{
			Addr:         ":8080",
			AllowOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:  32,
		},
	}
}

// Load reads the config file at path over Default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over Default and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := wavestego.Validator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("%w: encoder: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ImagePaths returns the configured cover images joined with the images
// directory
func (c *Config) ImagePaths() []string {
	paths := make([]string, 0, len(c.Images.ImageFiles))
	for _, f := range c.Images.ImageFiles {
		if filepath.IsAbs(f) {
			paths = append(paths, f)
			continue
		}
		paths = append(paths, filepath.Join(c.Directories.Images, f))
	}
	return paths
}

// Encode serializes c as TOML
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
