package placemarks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/cli"
	"github.com/BIwashi/cangps/pkg/kml"
)

type exporter struct {
	decode  cli.DecodeFlags
	outFile string
}

func NewCommand() *cobra.Command {
	s := &exporter{
		outFile: "",
	}

	cmd := &cobra.Command{
		Use:   "kml FILE",
		Short: "Write the decoded GPS positions as KML placemarks.",
		Example: `  # Writes drive.kml next to the capture
  cangps kml drive.bin`,
		Args: cobra.ExactArgs(1),
		RunE: cli.WithContext(s.run),
	}

	cmd.Flags().StringVar(&s.outFile, "out", s.outFile, "KML file (default: capture name with .kml extension)")
	s.decode.Register(cmd)

	return cmd
}

// defaultOutput replaces the capture extension with .kml.
func defaultOutput(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".kml"
}

func (s *exporter) run(ctx context.Context, input cli.Input) error {
	path := input.Args[0]
	out := s.outFile
	if out == "" {
		out = defaultOutput(path)
	}

	bundle, err := s.decode.Decode(ctx, input, path)
	if err != nil {
		return err
	}

	points := kml.Points(bundle.Longitude.Values, bundle.Latitude.Values)
	if err := kml.WriteFile(out, points); err != nil {
		return errors.Wrap(err, "failed to write KML file")
	}

	input.Logger.Info("KML file created", "output_file", out, "placemarks", len(points))
	_, err = fmt.Fprintf(input.Stdout, "KML file %q created successfully.\n", out)
	return err
}
