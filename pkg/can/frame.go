package can

import (
	"encoding/hex"
	"fmt"
	"strings"

	ecan "go.einride.tech/can"
)

// PayloadLength is the fixed payload size of every frame handled here.
// Capture records always reserve 8 bytes, regardless of the DLC on the bus.
const PayloadLength = ecan.MaxDataLength

// Frame wraps einride can.Frame to add capture timestamp and interface information.
// Embedding keeps field access (ID, Length, Data, IsExtended, ...) identical.
//
// ID holds the full 32-bit arbitration field exactly as the capture stored it;
// no flag bits are masked off.
type Frame struct {
	ecan.Frame

	// Timestamp is the capture time in seconds.
	Timestamp float64

	// Channel is the index of the CAN interface the frame arrived on.
	Channel uint8
}

// NewFrame builds an extended 8-byte frame.
func NewFrame(ts float64, channel uint8, id uint32, data ecan.Data) Frame {
	return Frame{
		Frame: ecan.Frame{
			ID:         id,
			Length:     PayloadLength,
			Data:       data,
			IsExtended: true,
		},
		Timestamp: ts,
		Channel:   channel,
	}
}

// HexID returns the arbitration ID as 8 uppercase hex digits.
func (f Frame) HexID() string {
	return fmt.Sprintf("%08X", f.ID)
}

// HexPayload returns the payload bytes as uppercase hex.
func (f Frame) HexPayload() string {
	return strings.ToUpper(hex.EncodeToString(f.Data[:f.Length]))
}

// String renders the frame as a candump log line:
//
//	(1700000000.123456) can0 18FEF100#0100020000000000
func (f Frame) String() string {
	return fmt.Sprintf("(%.6f) can%d %s#%s", f.Timestamp, f.Channel, f.HexID(), f.HexPayload())
}

// Reader is a source of frames. ReadFrame returns io.EOF once the source is exhausted.
type Reader interface {
	ReadFrame() (*Frame, error)
}
