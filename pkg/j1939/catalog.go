// Package j1939 holds the fixed message catalogue used to decode the
// vehicle and GPS-logger telemetry: two SAE J1939 parameter groups and
// three proprietary GPS groups, keyed by the 16-bit tag in the middle of
// the 29-bit identifier.
package j1939

import (
	"go.einride.tech/can/pkg/descriptor"
)

// Tags (PDU format + PDU specific) of the recognised parameter groups.
const (
	TagVehicleSpeed uint16 = 0xFEF1 // CCVS, SPN 84
	TagEngineSpeed  uint16 = 0xF004 // EEC1, SPN 190
	TagPosition     uint16 = 0xFF01
	TagVelocity     uint16 = 0xFF02
	TagTime         uint16 = 0xFF03
)

// Upper bounds of the valid physical ranges. The raw values 0 and
// 0xFAFF/0xFFFF mark "not available", so valid samples lie strictly
// between 0 and these limits.
const (
	MaxVehicleSpeed = 250.99609375 // km/h
	MaxEngineSpeed  = 8031.875     // rpm
)

// Tag extracts the middle 16 bits of an arbitration ID, i.e. hex digits
// 2..6 of its 8-digit rendering.
func Tag(id uint32) uint16 {
	return uint16(id >> 8)
}

var (
	WheelBasedVehicleSpeed = &descriptor.Signal{
		Name:        "WheelBasedVehicleSpeed",
		Description: "SPN 84",
		Start:       8,
		Length:      16,
		Scale:       1.0 / 256,
		Unit:        "km/h",
	}
	EngineSpeed = &descriptor.Signal{
		Name:        "EngineSpeed",
		Description: "SPN 190",
		Start:       24,
		Length:      16,
		Scale:       0.125,
		Unit:        "rpm",
	}
	Latitude = &descriptor.Signal{
		Name:     "Latitude",
		Start:    0,
		Length:   32,
		IsSigned: true,
		Scale:    1e-7,
		Unit:     "deg",
	}
	Longitude = &descriptor.Signal{
		Name:     "Longitude",
		Start:    32,
		Length:   32,
		IsSigned: true,
		Scale:    1e-7,
		Unit:     "deg",
	}
	GPSSpeed = &descriptor.Signal{
		Name:   "GPSSpeed",
		Start:  0,
		Length: 32,
		Scale:  1e-6,
		Unit:   "km/h",
	}
	HeadingDegree = &descriptor.Signal{
		Name:   "HeadingDegree",
		Start:  32,
		Length: 32,
		Scale:  1e-5,
		Unit:   "deg",
	}
	Satellites = &descriptor.Signal{
		Name:   "Satellites",
		Start:  0,
		Length: 8,
		Scale:  1,
	}
	GPSMicroseconds = &descriptor.Signal{
		Name:   "GPSMicroseconds",
		Start:  8,
		Length: 24,
		Scale:  1e-6,
		Unit:   "s",
	}
	GPSEpochSeconds = &descriptor.Signal{
		Name:   "GPSEpochSeconds",
		Start:  32,
		Length: 32,
		Scale:  1,
		Unit:   "s",
	}
)

// Messages lists the recognised messages. IDs use priority 6 and source
// address 0; only the tag takes part in matching.
var Messages = []*descriptor.Message{
	{
		Name:        "CCVS",
		Description: "Cruise Control/Vehicle Speed",
		ID:          0x18FEF100,
		IsExtended:  true,
		Length:      8,
		Signals:     []*descriptor.Signal{WheelBasedVehicleSpeed},
	},
	{
		Name:        "EEC1",
		Description: "Electronic Engine Controller 1",
		ID:          0x0CF00400,
		IsExtended:  true,
		Length:      8,
		Signals:     []*descriptor.Signal{EngineSpeed},
	},
	{
		Name:        "GPSPosition",
		Description: "GPS latitude/longitude",
		ID:          0x18FF0100,
		IsExtended:  true,
		Length:      8,
		Signals:     []*descriptor.Signal{Latitude, Longitude},
	},
	{
		Name:        "GPSVelocity",
		Description: "GPS speed over ground and heading",
		ID:          0x18FF0200,
		IsExtended:  true,
		Length:      8,
		Signals:     []*descriptor.Signal{GPSSpeed, HeadingDegree},
	},
	{
		Name:        "GPSTime",
		Description: "Satellites in view and GPS epoch time",
		ID:          0x18FF0300,
		IsExtended:  true,
		Length:      8,
		Signals:     []*descriptor.Signal{Satellites, GPSMicroseconds, GPSEpochSeconds},
	},
}

// Lookup returns the message whose tag matches id.
func Lookup(id uint32) (*descriptor.Message, bool) {
	tag := Tag(id)
	for _, m := range Messages {
		if Tag(m.ID) == tag {
			return m, true
		}
	}
	return nil, false
}
