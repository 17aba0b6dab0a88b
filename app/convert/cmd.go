package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/cli"
	"github.com/BIwashi/cangps/pkg/mcap"
)

type converter struct {
	decode   cli.DecodeFlags
	mcapFile string
}

func NewCommand() *cobra.Command {
	s := &converter{
		mcapFile: "",
	}

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a CAN capture to MCAP with one channel per decoded signal.",
		Long: `Convert a binary capture, candump log or PCAPNG file to MCAP format.

This command decodes vehicle speed, engine speed and GPS signals from the capture
and writes every sample as a google.protobuf.DoubleValue message on the
/cangps/<signal> topic, timestamped with the sample time.`,
		Example: `  # Convert a binary capture to MCAP
  cangps convert --mcap-file drive.mcap drive.bin`,
		Args: cobra.ExactArgs(1),
		RunE: cli.WithContext(s.run),
	}

	cmd.Flags().StringVar(&s.mcapFile, "mcap-file", s.mcapFile, "MCAP file")
	s.decode.Register(cmd)

	if err := cmd.MarkFlagRequired("mcap-file"); err != nil {
		panic(fmt.Sprintf("mark --mcap-file required: %v", err))
	}

	return cmd
}

func (s *converter) run(ctx context.Context, input cli.Input) error {
	path := input.Args[0]
	input.Logger.Info("Starting capture to MCAP conversion",
		"capture_file", path,
		"mcap_file", s.mcapFile,
	)

	bundle, err := s.decode.Decode(ctx, input, path)
	if err != nil {
		return err
	}

	out, err := os.Create(s.mcapFile)
	if err != nil {
		return errors.Wrap(err, "failed to create MCAP file")
	}
	defer out.Close()

	writer, err := mcap.NewWriter(out, mcap.Options{
		Compression: input.Config.MCAP.Compression,
		ChunkSize:   input.Config.MCAP.ChunkSize,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create MCAP writer")
	}

	n, err := writer.WriteBundle(bundle)
	if err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "failed to write samples")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize MCAP file")
	}

	input.Logger.Info("Conversion completed successfully!",
		"messages", n,
		"output_file", s.mcapFile,
	)
	return nil
}
