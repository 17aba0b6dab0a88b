package can

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ecan "go.einride.tech/can"
)

func TestParseLine(t *testing.T) {
	f, err := ParseLine("(1700000000.250000) can1 18FEF100#0100020000000000")
	require.NoError(t, err)

	assert.Equal(t, 1700000000.25, f.Timestamp)
	assert.Equal(t, uint8(1), f.Channel)
	assert.Equal(t, uint32(0x18FEF100), f.ID)
	assert.Equal(t, ecan.Data{0x01, 0x00, 0x02, 0, 0, 0, 0, 0}, f.Data)
	assert.Equal(t, uint8(PayloadLength), f.Length)
	assert.True(t, f.IsExtended)
}

func TestParseLineVariants(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		channel uint8
		data    ecan.Data
	}{
		{"lowercase hex", "(1.0) can0 18fef100#0a0b0c0d0e0f1011", 0, ecan.Data{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11}},
		{"long payload truncated", "(1.0) can0 18FEF100#0102030405060708AABB", 0, ecan.Data{1, 2, 3, 4, 5, 6, 7, 8}},
		{"vcan interface", "(1.0) vcan3 18FEF100#0000000000000000", 3, ecan.Data{}},
		{"interface without index", "(1.0) any 18FEF100#0000000000000000", 0, ecan.Data{}},
		{"trailing fields", "(1.0) can2 18FEF100#0000000000000000 R extra", 2, ecan.Data{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.channel, f.Channel)
			assert.Equal(t, tt.data, f.Data)
		})
	}
}

func TestParseLineMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"two fields", "(1.0) can0"},
		{"bad timestamp", "(abc) can0 18FEF100#0000000000000000"},
		{"no separator", "(1.0) can0 18FEF1000000000000000000"},
		{"short id", "(1.0) can0 FEF100#0000000000000000"},
		{"standard id", "(1.0) can0 123#0000000000000000"},
		{"long id", "(1.0) can0 0018FEF100#0000000000000000"},
		{"short payload", "(1.0) can0 18FEF100#00000000000000"},
		{"non-hex id", "(1.0) can0 18FEG100#0000000000000000"},
		{"non-hex payload", "(1.0) can0 18FEF100#00000000000000ZZ"},
		{"remote frame", "(1.0) can0 18FEF100#R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestTextReader(t *testing.T) {
	log := strings.Join([]string{
		"(10.000000) can0 18FEF100#0100020000000000",
		"",
		"garbage line",
		"(10.500000) can0 123#00",
		"(11.000000) can1 18FF0300#0800000000000000",
		"   ",
		"(12.000000) can0 0CF00400#000000401F000000",
	}, "\n")

	r := NewTextReader(strings.NewReader(log))
	frames := readAll(t, r)

	require.Len(t, frames, 3)
	assert.Equal(t, []float64{10, 11, 12}, []float64{frames[0].Timestamp, frames[1].Timestamp, frames[2].Timestamp})
	assert.Equal(t, 2, r.Skipped())
}

func TestTextReaderSkipsOverlongLine(t *testing.T) {
	log := strings.Repeat("x", 70000) + "\n" +
		"(1.0) can0 18FEF100#0100020000000000\n" +
		strings.Repeat("\x00\xff", 3*maxLineLength) + "\n" +
		"(2.0) can0 18FEF100#0100030000000000"

	r := NewTextReader(strings.NewReader(log))
	frames := readAll(t, r)

	require.Len(t, frames, 2)
	assert.Equal(t, 1.0, frames[0].Timestamp)
	assert.Equal(t, 2.0, frames[1].Timestamp)
	assert.Equal(t, 2, r.Skipped())
}

func TestTextReaderOverlongFinalLine(t *testing.T) {
	log := "(1.0) can0 18FEF100#0100020000000000\n" + strings.Repeat("y", maxLineLength+1)

	r := NewTextReader(strings.NewReader(log))
	frames := readAll(t, r)

	require.Len(t, frames, 1)
	assert.Equal(t, 1, r.Skipped())
}

func TestTextReaderCRLF(t *testing.T) {
	r := NewTextReader(strings.NewReader("(1.0) can0 18FEF100#0100020000000000\r\n(2.0) can1 18FEF100#0100020000000000\r\n"))
	frames := readAll(t, r)

	require.Len(t, frames, 2)
	assert.Equal(t, uint8(1), frames[1].Channel)
	assert.Zero(t, r.Skipped())
}

func TestTextReaderError(t *testing.T) {
	boom := errors.New("boom")
	r := NewTextReader(iotest.ErrReader(boom))

	_, err := r.ReadFrame()
	assert.ErrorIs(t, err, boom)
}
