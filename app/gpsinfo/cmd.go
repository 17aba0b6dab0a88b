package gpsinfo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/cli"
	"github.com/BIwashi/cangps/pkg/stats"
)

type reporter struct {
	decode cli.DecodeFlags
}

func NewCommand() *cobra.Command {
	s := &reporter{}

	cmd := &cobra.Command{
		Use:   "gps-info FILE",
		Short: "Print GPS time span, satellite count, speed and heading statistics.",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.WithContext(s.run),
	}

	s.decode.Register(cmd)

	return cmd
}

func (s *reporter) run(ctx context.Context, input cli.Input) error {
	bundle, err := s.decode.Decode(ctx, input, input.Args[0])
	if err != nil {
		return err
	}

	summary, err := stats.SummarizeGPS(bundle)
	if err != nil {
		return errors.Wrapf(err, "%s", input.Args[0])
	}
	return summary.Fprint(input.Stdout)
}
