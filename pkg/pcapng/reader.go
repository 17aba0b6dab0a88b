package pcapng

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	ecan "go.einride.tech/can"

	"github.com/BIwashi/cangps/pkg/can"
)

// linkTypeCAN is LINKTYPE_CAN_SOCKETCAN. ref: https://www.tcpdump.org/linktypes.html
const linkTypeCAN layers.LinkType = 227

const (
	idFlagExtended = 0x80000000
	idFlagRemote   = 0x40000000
	idFlagError    = 0x20000000
	idMaskExtended = 0x1fffffff
	idMaskStandard = 0x7ff

	socketCANHeaderSize = 8
)

// errSkip marks packets that carry no usable data frame.
var errSkip = errors.New("not a CAN data frame")

// Reader reads CAN frames from a PCAPNG capture
type Reader struct {
	reader      *pcapgo.NgReader
	linkType    layers.LinkType
	packetCount uint64
	skipped     uint64
}

// NewReader creates a new PCAPNG reader
func NewReader(r io.Reader) (*Reader, error) {
	ngReader, err := pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pcapng reader")
	}

	return &Reader{
		reader:   ngReader,
		linkType: ngReader.LinkType(),
	}, nil
}

// ReadFrame reads the next CAN data frame, skipping packets that are not one.
func (r *Reader) ReadFrame() (*can.Frame, error) {
	for {
		data, ci, err := r.reader.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "failed to read packet data")
		}
		r.packetCount++

		payload, err := r.socketCANPayload(data)
		if err != nil {
			r.skipped++
			continue
		}
		frame, err := decodeSocketCAN(payload, ci)
		if err != nil {
			r.skipped++
			continue
		}
		return frame, nil
	}
}

// socketCANPayload strips the link-layer header.
func (r *Reader) socketCANPayload(data []byte) ([]byte, error) {
	switch r.linkType {
	case layers.LinkTypeLinuxSLL:
		packet := gopacket.NewPacket(data, r.linkType, gopacket.Default)
		if sllLayer := packet.Layer(layers.LayerTypeLinuxSLL); sllLayer != nil {
			return sllLayer.(*layers.LinuxSLL).Payload, nil
		}
		return data, nil
	case linkTypeCAN:
		return data, nil
	default:
		return nil, errors.Newf("unsupported link type: %v", r.linkType)
	}
}

// decodeSocketCAN decodes a struct can_frame. Remote and error frames are
// skipped. Standard IDs are kept as-is; they never match an extended tag.
func decodeSocketCAN(data []byte, ci gopacket.CaptureInfo) (*can.Frame, error) {
	if len(data) < socketCANHeaderSize {
		return nil, errors.Wrapf(errSkip, "data too short for CAN frame: %d", len(data))
	}

	var (
		canIDRaw   = binary.LittleEndian.Uint32(data[0:4])
		isExtended = canIDRaw&idFlagExtended != 0
		isRemote   = canIDRaw&idFlagRemote != 0
		isError    = canIDRaw&idFlagError != 0
	)
	if isRemote || isError {
		return nil, errSkip
	}

	canID := canIDRaw & idMaskStandard
	if isExtended {
		canID = canIDRaw & idMaskExtended
	}

	dataLen := min(data[4], ecan.MaxDataLength)
	var canData ecan.Data
	n := copy(canData[:dataLen], data[socketCANHeaderSize:])

	return &can.Frame{
		Frame: ecan.Frame{
			ID:         canID,
			Length:     uint8(n),
			Data:       canData,
			IsExtended: isExtended,
		},
		Timestamp: float64(ci.Timestamp.UnixNano()) / 1e9,
		Channel:   uint8(ci.InterfaceIndex),
	}, nil
}

// PacketCount returns the number of packets read
func (r *Reader) PacketCount() uint64 {
	return r.packetCount
}

// Skipped returns the number of packets that were not CAN data frames.
func (r *Reader) Skipped() uint64 {
	return r.skipped
}
