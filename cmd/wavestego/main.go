// Command wavestego embeds and recovers messages in images.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tuomas-lb/wavestego/internal/config"
	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
	params     paramFlags
}

// paramFlags mirror wavestego.Params. Only flags set on the command line
// override the config file.
type paramFlags struct {
	alpha         float64
	blockSize     int
	level         int
	wavelet       string
	colorSpace    string
	channels      []int
	coefficients  []string
	eccSymbols    int
	ecc           string
	dispatch      string
	strategy      string
	consolidation string
}

func (f *paramFlags) register(fs *pflag.FlagSet) {
	d := wavestego.DefaultParams()
	fs.Float64Var(&f.alpha, "alpha", d.Alpha, "embedding strength")
	fs.IntVar(&f.blockSize, "block-size", d.BlockSize, "embedding block side")
	fs.IntVar(&f.level, "level", d.Level, "wavelet decomposition level")
	fs.StringVar(&f.wavelet, "wavelet", d.Wavelet, "transform: haar, db2, cdf97, dct or iwt53")
	fs.StringVar(&f.colorSpace, "color-space", d.ColorSpace, "working color space")
	fs.IntSliceVar(&f.channels, "channels", d.UseChannels, "channel indices carrying the message")
	fs.StringSliceVar(&f.coefficients, "coefficients", d.Coefficients, "detail planes carrying the message")
	fs.IntVar(&f.eccSymbols, "ecc-symbols", d.ECCSymbols, "Reed-Solomon parity bytes per block")
	fs.StringVar(&f.ecc, "ecc", d.ECC, "error correction: rs or rep3")
	fs.StringVar(&f.dispatch, "dispatch", d.Dispatch, "copy layout: tiled or uniform")
	fs.StringVar(&f.strategy, "strategy", d.Strategy, "block embedding: mean, or perimeter with iwt53 over RGB")
	fs.StringVar(&f.consolidation, "consolidation", d.Consolidation, "voting: fragment or mode")
}

// apply overrides base with every flag the user set
func (f *paramFlags) apply(fs *pflag.FlagSet, base wavestego.Params) wavestego.Params {
	p := base
	set := map[string]func(){
		"alpha":         func() { p.Alpha = f.alpha },
		"block-size":    func() { p.BlockSize = f.blockSize },
		"level":         func() { p.Level = f.level },
		"wavelet":       func() { p.Wavelet = f.wavelet },
		"color-space":   func() { p.ColorSpace = f.colorSpace },
		"channels":      func() { p.UseChannels = f.channels },
		"coefficients":  func() { p.Coefficients = f.coefficients },
		"ecc-symbols":   func() { p.ECCSymbols = f.eccSymbols },
		"ecc":           func() { p.ECC = f.ecc },
		"dispatch":      func() { p.Dispatch = f.dispatch },
		"strategy":      func() { p.Strategy = f.strategy },
		"consolidation": func() { p.Consolidation = f.consolidation },
	}
	for name, fn := range set {
		if fs.Changed(name) {
			fn()
		}
	}
	return p
}

// loadConfig reads --config when given, else the defaults
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

// resolveParams merges the config file and the command line
func (o *rootOptions) resolveParams(cmd *cobra.Command) (*config.Config, wavestego.Params, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, wavestego.Params{}, err
	}
	p := o.params.apply(cmd.Flags(), cfg.Encoder)
	if err := p.Validate(); err != nil {
		return nil, wavestego.Params{}, err
	}
	return cfg, p, nil
}

func (o *rootOptions) setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(o.logLevel))); err != nil {
		return fmt.Errorf("invalid log level %q", o.logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if o.logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "wavestego",
		Short:         "Hide messages in images so they survive JPEG compression",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log as JSON")
	opts.params.register(pf)

	root.AddCommand(
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newCapacityCmd(opts),
		newEvalCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
