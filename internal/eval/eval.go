// Package eval measures how well messages survive JPEG recompression over a
// set of cover images and encoder parameters.
package eval

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/tuomas-lb/wavestego/internal/config"
	"github.com/tuomas-lb/wavestego/internal/imgutil"
	"github.com/tuomas-lb/wavestego/internal/metrics"
	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

// QualityResult is the outcome of decoding after one JPEG compression
type QualityResult struct {
	Quality int
	// CorrectBits is the fraction of extracted bits that match the
	// dispatched payload
	CorrectBits float64
	// Success is set when the decoded message equals the secret
	Success bool
	// FalsePositive is set when a message was decoded but is wrong
	FalsePositive bool
}

// Row is the evaluation of one image under one parameter set
type Row struct {
	RunID    string
	FileName string
	Params   wavestego.Params
	// Skipped is set when the secret does not fit the image
	Skipped bool
	Diff    metrics.Diff
	Results []QualityResult
}

// Runner embeds Secret, compresses at every quality and decodes
type Runner struct {
	Secret    []byte
	Qualities []int
	// Workers bounds concurrent jobs; 0 uses one per CPU
	Workers int
	Logger  *slog.Logger
}

// NewRunner builds a Runner from the evaluation section of cfg
func NewRunner(cfg config.Evaluation, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Secret:    []byte(cfg.Secret),
		Qualities: cfg.Qualities,
		Workers:   cfg.Workers,
		Logger:    logger,
	}
}

// Expand returns base combined with every combination of the non-empty
// sweep lists. An empty sweep yields base alone.
func Expand(base wavestego.Params, sweep config.Sweep) []wavestego.Params {
	out := []wavestego.Params{base}
	out = vary(out, sweep.Alpha, func(p *wavestego.Params, v float64) { p.Alpha = v })
	out = vary(out, sweep.ECCSymbols, func(p *wavestego.Params, v int) { p.ECCSymbols = v })
	out = vary(out, sweep.Level, func(p *wavestego.Params, v int) { p.Level = v })
	out = vary(out, sweep.BlockSize, func(p *wavestego.Params, v int) { p.BlockSize = v })
	out = vary(out, sweep.Wavelet, func(p *wavestego.Params, v string) { p.Wavelet = v })
	out = vary(out, sweep.ColorSpace, func(p *wavestego.Params, v string) { p.ColorSpace = v })
	out = vary(out, sweep.UseChannels, func(p *wavestego.Params, v []int) { p.UseChannels = v })
	out = vary(out, sweep.Coefficients, func(p *wavestego.Params, v []string) { p.Coefficients = v })
	return out
}

func vary[T any](in []wavestego.Params, values []T, set func(*wavestego.Params, T)) []wavestego.Params {
	if len(values) == 0 {
		return in
	}
	out := make([]wavestego.Params, 0, len(in)*len(values))
	for _, p := range in {
		for _, v := range values {
			q := p
			set(&q, v)
			out = append(out, q)
		}
	}
	return out
}

// Run evaluates every image under every parameter set. Rows come back in
// image major order. The first load or encode failure other than a
// capacity error cancels the run.
func (r *Runner) Run(ctx context.Context, paths []string, params []wavestego.Params) ([]Row, error) {
	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("parameter set %d: %w", i, err)
		}
	}

	runID := uuid.NewString()
	rows := make([]Row, len(paths)*len(params))
	start := time.Now()
	r.Logger.Info("evaluation started",
		"run_id", runID,
		"images", len(paths),
		"parameter_sets", len(params),
		"qualities", r.Qualities)

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, _, err := imgutil.LoadImageFromFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for j, p := range params {
				row, err := r.Evaluate(img, filepath.Base(path), p)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				row.RunID = runID
				rows[i*len(params)+j] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("evaluation finished",
		"run_id", runID,
		"rows", len(rows),
		"skipped", lo.CountBy(rows, func(row Row) bool { return row.Skipped }),
		"elapsed", time.Since(start))
	return rows, nil
}

// Evaluate runs one image under one parameter set
func (r *Runner) Evaluate(img image.Image, name string, p wavestego.Params) (Row, error) {
	row := Row{FileName: name, Params: p}

	enc, err := wavestego.Encode(img, r.Secret, p)
	if errors.Is(err, wavestego.ErrCapacity) || errors.Is(err, wavestego.ErrImageTooSmall) {
		r.Logger.Debug("secret does not fit", "file", name, "error", err)
		row.Skipped = true
		return row, nil
	}
	if err != nil {
		return row, err
	}

	row.Diff = metrics.Compare(enc.Original, enc.Stego)
	payload := lo.Flatten(enc.Parts)

	for _, q := range r.Qualities {
		compressed, err := imgutil.Compress(enc.Stego, q)
		if err != nil {
			return row, err
		}
		dec, err := wavestego.Decode(compressed, p)
		if err != nil {
			return row, err
		}

		ok := dec.Message != nil && string(dec.Message) == string(r.Secret)
		row.Results = append(row.Results, QualityResult{
			Quality:       q,
			CorrectBits:   metrics.BitAccuracy(payload, dec.Raw),
			Success:       ok,
			FalsePositive: dec.Message != nil && !ok,
		})
	}

	r.Logger.Debug("image evaluated", "file", name, "psnr", row.Diff.PSNR)
	return row, nil
}
