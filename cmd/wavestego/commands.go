package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tuomas-lb/wavestego/internal/eval"
	"github.com/tuomas-lb/wavestego/internal/imgutil"
	"github.com/tuomas-lb/wavestego/internal/metrics"
	"github.com/tuomas-lb/wavestego/internal/server"
	"github.com/tuomas-lb/wavestego/pkg/wavestego"
)

// errNoMessage is returned by decode when nothing could be recovered
var errNoMessage = errors.New("no message recovered")

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	var (
		input, output, message, messageFile, format string
		quality                                     int
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Embed a message into an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := opts.resolveParams(cmd)
			if err != nil {
				return err
			}

			msg := []byte(message)
			if messageFile != "" {
				if msg, err = os.ReadFile(messageFile); err != nil {
					return fmt.Errorf("failed to read message file: %w", err)
				}
			}
			if len(msg) == 0 {
				return errors.New("message is required")
			}

			img, _, err := imgutil.LoadImageFromFile(input)
			if err != nil {
				return err
			}
			res, err := wavestego.Encode(img, msg, p)
			if err != nil {
				return err
			}

			if format == "" {
				if format, err = imgutil.FormatFromPath(output); err != nil {
					return err
				}
			}
			if err := imgutil.SaveImageToFile(res.Stego, format, output, quality); err != nil {
				return err
			}

			info, err := wavestego.Capacity(res.Stego.Bounds(), p)
			if err != nil {
				return err
			}
			diff := metrics.Compare(res.Original, res.Stego)
			slog.Info("message embedded",
				"output", output,
				"bytes", len(msg),
				"max_bytes", info.MaxMessageBytes,
				"psnr", diff.PSNR,
				"mse", diff.MSE)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "cover image")
	f.StringVarP(&output, "output", "o", "", "stego image")
	f.StringVarP(&message, "message", "m", "", "message to embed")
	f.StringVar(&messageFile, "message-file", "", "read the message from a file")
	f.StringVar(&format, "format", "", "output format, derived from --output when empty")
	f.IntVar(&quality, "quality", imgutil.DefaultJPEGQuality, "JPEG quality for jpeg output")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
	return cmd
}

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	var (
		input string
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Recover a message from an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := opts.resolveParams(cmd)
			if err != nil {
				return err
			}

			res, err := wavestego.DecodeFile(input, p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintf(out, "consolidated: %s\n", hex.EncodeToString(res.Consolidated))
				fmt.Fprintf(out, "raw: %s\n", hex.EncodeToString(res.Raw))
			}
			if res.Message == nil {
				return errNoMessage
			}
			fmt.Fprintln(out, string(res.Message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "stego image")
	cmd.Flags().BoolVar(&raw, "raw", false, "also print the voted and raw payloads in hex")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newCapacityCmd(opts *rootOptions) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Report how much an image can carry",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := opts.resolveParams(cmd)
			if err != nil {
				return err
			}
			img, _, err := imgutil.LoadImageFromFile(input)
			if err != nil {
				return err
			}
			info, err := wavestego.Capacity(img.Bounds(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Image:        %dx%d (used %dx%d)\n", img.Bounds().Dx(), img.Bounds().Dy(), info.Width, info.Height)
			fmt.Fprintf(out, "Blocks/plane: %d\n", info.BlocksPerPlane)
			fmt.Fprintf(out, "Bytes/plane:  %d\n", info.PerPlane)
			fmt.Fprintf(out, "Total bytes:  %d\n", info.Total)
			fmt.Fprintf(out, "Min message:  %d bytes\n", info.MinMessageBytes)
			fmt.Fprintf(out, "Max message:  %d bytes (%d copies)\n", info.MaxMessageBytes, info.Copies)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "cover image")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newEvalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Embed, JPEG compress and decode every configured image and write a CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := opts.resolveParams(cmd)
			if err != nil {
				return err
			}
			paths := cfg.ImagePaths()
			if len(paths) == 0 {
				return errors.New("no images configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := eval.NewRunner(cfg.Evaluation, slog.Default())
			rows, err := runner.Run(ctx, paths, eval.Expand(p, cfg.Evaluation.Sweep))
			if err != nil {
				return err
			}

			path, err := eval.SaveCSV(filepath.Join(cfg.Directories.Output, "test"), rows, cfg.Evaluation.Qualities)
			if err != nil {
				return err
			}
			slog.Info("report saved", "path", path)
			return nil
		},
	}
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := opts.resolveParams(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if !slog.Default().Enabled(ctx, slog.LevelDebug) {
				gin.SetMode(gin.ReleaseMode)
			}
			return server.New(cfg.Server, p, slog.Default()).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
