package plot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/chart"
	"github.com/BIwashi/cangps/pkg/cli"
)

type plotter struct {
	decode  cli.DecodeFlags
	outFile string
}

func NewCommand() *cobra.Command {
	s := &plotter{
		outFile: "",
	}

	cmd := &cobra.Command{
		Use:   "plot FILE [FILE2]",
		Short: "Plot vehicle speed and engine speed of one capture, or compare two.",
		Long: `Plot vehicle speed and engine speed against time as a PNG image.

With one capture the image has two panels. With two captures it has one row
per capture so the drives can be compared; panel titles carry the file names.`,
		Example: `  # Single capture, writes drive.png
  cangps plot drive.bin

  # Compare two captures
  cangps plot --out compare.png before.bin after.log`,
		Args: cobra.RangeArgs(1, 2),
		RunE: cli.WithContext(s.run),
	}

	cmd.Flags().StringVar(&s.outFile, "out", s.outFile, "PNG file (default: first capture name with .png extension)")
	s.decode.Register(cmd)

	return cmd
}

func (s *plotter) run(ctx context.Context, input cli.Input) error {
	out := s.outFile
	if out == "" {
		first := input.Args[0]
		out = strings.TrimSuffix(first, filepath.Ext(first)) + ".png"
	}

	captures := make([]chart.Capture, 0, len(input.Args))
	for _, path := range input.Args {
		bundle, err := s.decode.Decode(ctx, input, path)
		if err != nil {
			return err
		}
		c := chart.Capture{Bundle: bundle}
		if len(input.Args) > 1 {
			c.Name = filepath.Base(path)
		}
		captures = append(captures, c)
	}

	size := chart.SizeInches(input.Config.Plot.Width, input.Config.Plot.Height*float64(len(captures)))
	if err := chart.WriteSpeedsFile(out, size, captures...); err != nil {
		return errors.Wrap(err, "failed to write plot")
	}

	input.Logger.Info("Plot written", "output_file", out, "captures", len(captures))
	_, err := fmt.Fprintf(input.Stdout, "Plot %q created successfully.\n", out)
	return err
}
