// Package capture opens telemetry captures by file type and runs them
// through the signal decoder.
package capture

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/BIwashi/cangps/pkg/can"
	"github.com/BIwashi/cangps/pkg/pcapng"
	"github.com/BIwashi/cangps/pkg/signal"
)

// ErrUnsupportedFormat is returned for files that are neither binary
// captures, candump logs nor pcapng captures.
var ErrUnsupportedFormat = errors.New("unsupported capture format (want .bin, .txt, .log or .pcapng)")

// Format is the on-disk layout of a capture.
type Format int

const (
	Binary Format = iota + 1
	Text
	PCAPNG
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case Text:
		return "candump"
	case PCAPNG:
		return "pcapng"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return Binary, nil
	case ".txt", ".log":
		return Text, nil
	case ".pcapng":
		return PCAPNG, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// Source is an open capture file.
type Source struct {
	can.Reader
	Format Format
	file   *os.File
}

// Open opens path and returns a frame reader matching its format.
func Open(path string) (*Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open capture")
	}

	var reader can.Reader
	switch format {
	case Binary:
		reader = can.NewBinaryReader(bufio.NewReader(file))
	case Text:
		reader = can.NewTextReader(file)
	case PCAPNG:
		reader, err = pcapng.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &Source{Reader: reader, Format: format, file: file}, nil
}

// Close closes the underlying file.
func (s *Source) Close() error {
	return s.file.Close()
}

// Options controls Decode.
type Options struct {
	Mode signal.Mode
	// Workers > 1 decodes binary captures in memory with that many goroutines.
	Workers int
}

// Decode reads the capture at path and decodes its signals.
func Decode(ctx context.Context, path string, opts Options) (*signal.Bundle, signal.Stats, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, signal.Stats{}, err
	}

	if format == Binary && opts.Workers > 1 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, signal.Stats{}, errors.Wrap(err, "read capture")
		}
		frames, err := can.DecodeBlocks(ctx, data, opts.Workers)
		if err != nil {
			return nil, signal.Stats{}, err
		}
		bundle, stats := signal.DecodeFrames(frames, opts.Mode)
		return bundle, stats, nil
	}

	src, err := Open(path)
	if err != nil {
		return nil, signal.Stats{}, err
	}
	defer src.Close()

	return signal.DecodeAll(&contextReader{ctx: ctx, r: src}, opts.Mode)
}

// contextReader stops a read loop once ctx is done.
type contextReader struct {
	ctx context.Context
	r   can.Reader
}

func (c *contextReader) ReadFrame() (*can.Frame, error) {
	select {
	case <-c.ctx.Done():
		return nil, errors.Wrap(c.ctx.Err(), "decoding cancelled")
	default:
	}
	return c.r.ReadFrame()
}
