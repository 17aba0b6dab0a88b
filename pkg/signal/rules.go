package signal

import (
	ecan "go.einride.tech/can"

	"github.com/BIwashi/cangps/pkg/j1939"
)

// rule decodes the payload of one recognised message into b. It reports
// false when a sample was dropped as out of range.
type rule func(b *Bundle, ts float64, d ecan.Data) bool

var rules = map[uint16]rule{
	j1939.TagVehicleSpeed: decodeVehicleSpeed,
	j1939.TagEngineSpeed:  decodeEngineSpeed,
	j1939.TagPosition:     decodePosition,
	j1939.TagVelocity:     decodeVelocity,
	j1939.TagTime:         decodeTime,
}

func inOpenRange(v, lo, hi float64) bool {
	return lo < v && v < hi
}

func decodeVehicleSpeed(b *Bundle, ts float64, d ecan.Data) bool {
	v := j1939.Physical(j1939.WheelBasedVehicleSpeed, d)
	if !inOpenRange(v, 0, j1939.MaxVehicleSpeed) {
		return false
	}
	b.VehicleSpeed.Append(ts, v)
	return true
}

func decodeEngineSpeed(b *Bundle, ts float64, d ecan.Data) bool {
	v := j1939.Physical(j1939.EngineSpeed, d)
	if !inOpenRange(v, 0, j1939.MaxEngineSpeed) {
		return false
	}
	b.EngineSpeed.Append(ts, v)
	return true
}

func decodePosition(b *Bundle, ts float64, d ecan.Data) bool {
	b.Longitude.Append(ts, j1939.Physical(j1939.Longitude, d))
	b.Latitude.Append(ts, j1939.Physical(j1939.Latitude, d))
	return true
}

func decodeVelocity(b *Bundle, ts float64, d ecan.Data) bool {
	b.GPSSpeed.Append(ts, j1939.Physical(j1939.GPSSpeed, d))
	b.Heading.Append(ts, j1939.Physical(j1939.HeadingDegree, d))
	return true
}

func decodeTime(b *Bundle, ts float64, d ecan.Data) bool {
	b.Satellites.Append(ts, int(j1939.Raw(j1939.Satellites, d)))

	epoch := j1939.Raw(j1939.GPSEpochSeconds, d)
	b.GPSTime.Append(ts, epoch+j1939.Physical(j1939.GPSMicroseconds, d))
	return true
}
