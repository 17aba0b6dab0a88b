package cli

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/capture"
	"github.com/BIwashi/cangps/pkg/signal"
)

// DecodeFlags are the decoding flags shared by every command that reads a capture.
type DecodeFlags struct {
	Timestamps string
	Workers    int
}

// Register adds --timestamps and --workers to cmd.
func (f *DecodeFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Timestamps, "timestamps", f.Timestamps, "Sample timestamps: elapsed or absolute (default from config)")
	cmd.Flags().IntVar(&f.Workers, "workers", f.Workers, "Goroutines for decoding binary captures (default from config)")
}

// Options merges the flags over the configuration.
func (f *DecodeFlags) Options(input Input) (capture.Options, error) {
	timestamps := input.Config.Decode.Timestamps
	if f.Timestamps != "" {
		timestamps = f.Timestamps
	}
	mode, err := signal.ParseMode(timestamps)
	if err != nil {
		return capture.Options{}, err
	}

	workers := input.Config.Decode.Workers
	if f.Workers > 0 {
		workers = f.Workers
	}
	return capture.Options{Mode: mode, Workers: workers}, nil
}

// Decode decodes the capture at path and logs a summary of the pass.
func (f *DecodeFlags) Decode(ctx context.Context, input Input, path string) (*signal.Bundle, error) {
	opts, err := f.Options(input)
	if err != nil {
		return nil, err
	}

	input.Logger.Info("Decoding capture",
		"file", path,
		"timestamps", opts.Mode,
		"workers", opts.Workers,
	)
	start := time.Now()

	bundle, stats, err := capture.Decode(ctx, path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	input.Logger.Info("Decoded capture",
		"file", path,
		"frames", stats.Frames,
		"malformed", stats.Malformed,
		"unrecognized", stats.Unrecognized,
		"dropped", stats.Dropped,
		"duration", time.Since(start),
	)
	for _, ch := range bundle.Channels() {
		input.Logger.Debug("signal", "name", ch.Name, "samples", len(ch.Values))
	}
	return bundle, nil
}
