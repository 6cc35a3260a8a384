package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Delimiter separates CSV fields
const Delimiter = ';'

var baseColumns = []string{
	"run_id", "file_name",
	"alpha", "block_size", "level", "wavelet", "color_space",
	"use_channels", "coefficients", "ecc_symbols", "ecc",
	"dispatch", "strategy", "consolidation", "skipped",
	"min", "max", "abs_diff_mean", "psnr", "mse",
}

// Header returns the CSV columns for the given qualities
func Header(qualities []int) []string {
	cols := append([]string(nil), baseColumns...)
	for _, q := range qualities {
		cols = append(cols,
			fmt.Sprintf("%d_correct_bits", q),
			fmt.Sprintf("%d_is_success", q),
			fmt.Sprintf("%d_is_false_positive", q))
	}
	return cols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func record(row Row, qualities []int) []string {
	p := row.Params
	rec := []string{
		row.RunID, row.FileName,
		formatFloat(p.Alpha), strconv.Itoa(p.BlockSize), strconv.Itoa(p.Level), p.Wavelet, p.ColorSpace,
		strings.Join(lo.Map(p.UseChannels, func(c int, _ int) string { return strconv.Itoa(c) }), ","),
		strings.Join(p.Coefficients, ","),
		strconv.Itoa(p.ECCSymbols), p.ECC,
		p.Dispatch, p.Strategy, p.Consolidation,
		strconv.FormatBool(row.Skipped),
	}
	if row.Skipped {
		return append(rec, make([]string, len(Header(qualities))-len(rec))...)
	}

	d := row.Diff
	rec = append(rec, formatFloat(d.Min), formatFloat(d.Max), formatFloat(d.MeanAbsDiff), formatFloat(d.PSNR), formatFloat(d.MSE))
	byQuality := lo.KeyBy(row.Results, func(r QualityResult) int { return r.Quality })
	for _, q := range qualities {
		r, ok := byQuality[q]
		if !ok {
			rec = append(rec, "", "", "")
			continue
		}
		rec = append(rec, formatFloat(r.CorrectBits), strconv.FormatBool(r.Success), strconv.FormatBool(r.FalsePositive))
	}
	return rec
}

// WriteCSV writes rows with a header line
func WriteCSV(w io.Writer, rows []Row, qualities []int) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(Header(qualities)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(record(row, qualities)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes rows to a timestamped file in dir and returns its path
func SaveCSV(dir string, rows []Row, qualities []int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("encode_compress_decode_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, rows, qualities); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
