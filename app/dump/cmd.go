package dump

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/capture"
	"github.com/BIwashi/cangps/pkg/cli"
)

type dumper struct {
	outFile string
}

func NewCommand() *cobra.Command {
	s := &dumper{
		outFile: "",
	}

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every frame of a capture as a candump log line.",
		Example: `  # Convert a binary capture to a candump log
  cangps dump --out drive.log drive.bin`,
		Args: cobra.ExactArgs(1),
		RunE: cli.WithContext(s.run),
	}

	cmd.Flags().StringVar(&s.outFile, "out", s.outFile, "Output file (default: stdout)")

	return cmd
}

func (s *dumper) run(ctx context.Context, input cli.Input) (err error) {
	src, err := capture.Open(input.Args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	out := input.Stdout
	if s.outFile != "" {
		f, ferr := os.Create(s.outFile)
		if ferr != nil {
			return errors.Wrap(ferr, "failed to create output file")
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "close output file")
			}
		}()
		out = f
	}

	w := bufio.NewWriter(out)
	count := 0
	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "dump cancelled")
		default:
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to read frame")
		}
		if _, err := fmt.Fprintln(w, frame.String()); err != nil {
			return errors.Wrap(err, "failed to write frame")
		}
		count++
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush output")
	}

	input.Logger.Info("Dump completed", "file", input.Args[0], "format", src.Format, "frames", count)
	return nil
}
