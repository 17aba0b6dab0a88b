package j1939

import (
	ecan "go.einride.tech/can"
	"go.einride.tech/can/pkg/descriptor"
)

// TwosComplement interprets the low bits of raw as a two's-complement
// number. If the sign bit is set the result is -(^raw + 1) over bits bits.
func TwosComplement(raw uint64, bits uint8) int64 {
	if bits == 0 || bits > 64 {
		return int64(raw)
	}
	mask := uint64(1)<<bits - 1 // wraps to all ones for bits == 64
	raw &= mask
	if raw&(uint64(1)<<(bits-1)) == 0 {
		return int64(raw)
	}
	return -int64((^raw + 1) & mask)
}

// Raw returns the unscaled value of s in d, sign-converted for signed signals.
func Raw(s *descriptor.Signal, d ecan.Data) float64 {
	raw := s.UnmarshalUnsigned(d)
	if s.IsSigned {
		return float64(TwosComplement(raw, s.Length))
	}
	return float64(raw)
}

// decimalDivisors holds the signals whose physical value is raw / 10^n.
// Dividing keeps the shortest decimal rendering of the result; multiplying
// by Scale can land one ulp off (423464127 * 1e-7 = 42.346412699999995).
var decimalDivisors = map[*descriptor.Signal]float64{
	Latitude:        1e7,
	Longitude:       1e7,
	GPSSpeed:        1e6,
	HeadingDegree:   1e5,
	GPSMicroseconds: 1e6,
}

// Physical returns the scaled value of s in d.
func Physical(s *descriptor.Signal, d ecan.Data) float64 {
	if div, ok := decimalDivisors[s]; ok {
		return Raw(s, d) / div
	}
	return s.ToPhysical(Raw(s, d))
}
