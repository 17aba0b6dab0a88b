package can

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	ecan "go.einride.tech/can"
)

const (
	idHexLength      = 8
	payloadHexLength = 2 * PayloadLength
)

// ErrMalformedFrame is returned for a log line that does not carry a decodable frame.
var ErrMalformedFrame = errors.New("malformed frame")

// ParseLine parses one candump log line of the form
//
//	(<timestamp>) can<channel> <ID>#<payload>
//
// The ID must be 8 hex digits and the payload at least 16 hex digits; only the
// first 8 payload bytes are kept.
func ParseLine(line string) (Frame, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "expected 3 fields, got %d", len(fields))
	}

	ts, err := strconv.ParseFloat(strings.Trim(fields[0], "()"), 64)
	if err != nil {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "timestamp %q", fields[0])
	}

	idHex, payloadHex, ok := strings.Cut(fields[2], "#")
	if !ok {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "no '#' in %q", fields[2])
	}
	if len(idHex) != idHexLength {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "id %q is not %d hex digits", idHex, idHexLength)
	}
	if len(payloadHex) < payloadHexLength {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "payload %q shorter than %d hex digits", payloadHex, payloadHexLength)
	}

	id, err := strconv.ParseUint(idHex, 16, 32)
	if err != nil {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "id %q", idHex)
	}

	var data ecan.Data
	if _, err := hex.Decode(data[:], []byte(payloadHex[:payloadHexLength])); err != nil {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "payload %q", payloadHex)
	}

	return NewFrame(ts, parseChannel(fields[1]), uint32(id), data), nil
}

// parseChannel takes the trailing decimal digits of an interface name
// ("can1", "vcan0", "slcan2"). Names without digits map to channel 0.
func parseChannel(iface string) uint8 {
	i := len(iface)
	for i > 0 && iface[i-1] >= '0' && iface[i-1] <= '9' {
		i--
	}
	n, err := strconv.ParseUint(iface[i:], 10, 8)
	if err != nil {
		return 0
	}
	return uint8(n)
}

// maxLineLength bounds the bytes kept from one log line. Candump lines are
// well under 100 bytes; anything longer is junk and is skipped whole.
const maxLineLength = 64 * 1024

// TextReader reads frames from a candump-style log, one frame per line.
// Lines that do not parse are skipped.
type TextReader struct {
	r       *bufio.Reader
	line    int
	skipped int
}

// NewTextReader creates a new candump log reader
func NewTextReader(r io.Reader) *TextReader {
	return &TextReader{r: bufio.NewReaderSize(r, maxLineLength)}
}

// ReadFrame returns the next well-formed frame, or io.EOF at the end of input.
func (r *TextReader) ReadFrame() (*Frame, error) {
	for {
		line, tooLong, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(err, "read line %d", r.line+1)
		}
		r.line++

		if tooLong {
			r.skipped++
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f, err := ParseLine(line)
		if err != nil {
			r.skipped++
			continue
		}
		return &f, nil
	}
}

// readLine returns the next line without its terminator. A line that does not
// fit the buffer is drained and reported as tooLong.
func (r *TextReader) readLine() (string, bool, error) {
	b, isPrefix, err := r.r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(b), false, nil
	}
	for isPrefix {
		_, isPrefix, err = r.r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
	}
	return "", true, nil
}

// Skipped returns the number of non-blank lines that did not parse.
func (r *TextReader) Skipped() int {
	return r.skipped
}
