// Package signal turns CAN frames into timestamped physical-unit signals.
package signal

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/BIwashi/cangps/pkg/can"
	"github.com/BIwashi/cangps/pkg/j1939"
)

// Mode selects how sample timestamps are written.
type Mode int

const (
	// Absolute keeps the capture timestamp of each frame.
	Absolute Mode = iota
	// Elapsed subtracts the timestamp of the first frame seen.
	Elapsed
)

func (m Mode) String() string {
	switch m {
	case Absolute:
		return "absolute"
	case Elapsed:
		return "elapsed"
	default:
		return "unknown"
	}
}

// ParseMode parses "absolute" or "elapsed".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "absolute":
		return Absolute, nil
	case "elapsed":
		return Elapsed, nil
	}
	return 0, errors.Newf("unknown timestamp mode %q", s)
}

// Stats counts what happened to the frames of one decode pass.
type Stats struct {
	Frames       int // frames seen, including malformed ones
	Malformed    int
	Unrecognized int
	Dropped      int // out-of-range samples
}

// Decoder decodes frames into a Bundle. A Decoder is not safe for
// concurrent use; create one per pass.
type Decoder struct {
	mode    Mode
	start   float64
	started bool
	bundle  *Bundle
	stats   Stats
}

// NewDecoder creates a new signal decoder
func NewDecoder(mode Mode) *Decoder {
	return &Decoder{
		mode:   mode,
		bundle: &Bundle{},
	}
}

func (d *Decoder) timestamp(ts float64) float64 {
	if !d.started {
		d.start = ts
		d.started = true
	}
	if d.mode == Elapsed {
		return ts - d.start
	}
	return ts
}

// Decode processes one frame. Frames with a short payload, unknown tags and
// out-of-range values are skipped.
func (d *Decoder) Decode(f can.Frame) {
	d.stats.Frames++
	ts := d.timestamp(f.Timestamp)

	if f.Length < can.PayloadLength {
		d.stats.Malformed++
		return
	}

	decode, ok := rules[j1939.Tag(f.ID)]
	if !ok {
		d.stats.Unrecognized++
		return
	}
	if !decode(d.bundle, ts, f.Data) {
		d.stats.Dropped++
	}
}

// DecodeLine parses a candump log line and decodes it. Lines that do not
// parse are counted as malformed and skipped.
func (d *Decoder) DecodeLine(line string) {
	f, err := can.ParseLine(line)
	if err != nil {
		d.stats.Frames++
		d.stats.Malformed++
		return
	}
	d.Decode(f)
}

// Bundle returns the signals decoded so far.
func (d *Decoder) Bundle() *Bundle {
	return d.bundle
}

// Stats returns the counters of this pass.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// DecodeAll drains r and returns the decoded bundle.
func DecodeAll(r can.Reader, mode Mode) (*Bundle, Stats, error) {
	d := NewDecoder(mode)
	for {
		f, err := r.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, d.Stats(), errors.Wrap(err, "read frame")
		}
		d.Decode(*f)
	}
	return d.Bundle(), d.Stats(), nil
}

// DecodeFrames decodes an in-memory frame sequence.
func DecodeFrames(frames []can.Frame, mode Mode) (*Bundle, Stats) {
	d := NewDecoder(mode)
	for _, f := range frames {
		d.Decode(f)
	}
	return d.Bundle(), d.Stats()
}
