package j1939

import (
	"encoding/binary"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ecan "go.einride.tech/can"
)

func TestTwosComplement(t *testing.T) {
	tests := []struct {
		hex  string
		bits uint8
		want int64
	}{
		{"FFFFFFFF", 32, -1},
		{"00000001", 32, 1},
		{"80000000", 32, -2147483648},
		{"7FFFFFFF", 32, 2147483647},
		{"00000000", 32, 0},
		{"FF", 8, -1},
		{"7F", 8, 127},
		{"8000", 16, -32768},
		{"FFFFFFFFFFFFFFFF", 64, -1},
		// Bits above the width are ignored.
		{"1FFFFFFFF", 32, -1},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			raw, err := strconv.ParseUint(tt.hex, 16, 64)
			require.NoError(t, err)
			assert.Equal(t, tt.want, TwosComplement(raw, tt.bits))
		})
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		id   uint32
		want uint16
	}{
		{0x18FEF100, TagVehicleSpeed},
		{0x0CF00400, TagEngineSpeed},
		{0x18FF0100, TagPosition},
		{0x98FF02FE, TagVelocity},
		{0x00FF0300, TagTime},
		{0x18FEF200, 0xFEF2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tag(tt.id), "%08X", tt.id)
	}
}

func TestLookup(t *testing.T) {
	m, ok := Lookup(0x1CFF0233)
	require.True(t, ok)
	assert.Equal(t, "GPSVelocity", m.Name)

	_, ok = Lookup(0x18FEF200)
	assert.False(t, ok)

	for _, m := range Messages {
		got, ok := Lookup(m.ID)
		require.True(t, ok, m.Name)
		assert.Same(t, m, got)
	}
}

func TestPhysical(t *testing.T) {
	t.Run("signed position", func(t *testing.T) {
		lat, lon := int32(377749295), int32(-1224194155)
		var d ecan.Data
		binary.LittleEndian.PutUint32(d[0:4], uint32(lat))
		binary.LittleEndian.PutUint32(d[4:8], uint32(lon))

		assert.Equal(t, 37.7749295, Physical(Latitude, d))
		assert.Equal(t, -122.4194155, Physical(Longitude, d))
	})

	// Decimal signals divide by 10^n so every value keeps its shortest
	// decimal form.
	t.Run("decimal division", func(t *testing.T) {
		for raw := int32(423464100); raw < 423464200; raw++ {
			var d ecan.Data
			binary.LittleEndian.PutUint32(d[0:4], uint32(raw))
			binary.LittleEndian.PutUint32(d[4:8], uint32(raw))

			assert.Equal(t, float64(raw)/1e7, Physical(Latitude, d), "raw %d", raw)
			assert.Equal(t, float64(raw)/1e6, Physical(GPSSpeed, d), "raw %d", raw)
			assert.Equal(t, float64(raw)/1e5, Physical(HeadingDegree, d), "raw %d", raw)
		}

		d := ecan.Data{0xBF, 0x8C, 0x3D, 0x19}
		assert.Equal(t, "42.3464127", strconv.FormatFloat(Physical(Latitude, d), 'f', -1, 64))
	})

	t.Run("vehicle speed", func(t *testing.T) {
		d := ecan.Data{0x00, 0x00, 0x64}
		assert.Equal(t, 100.0, Physical(WheelBasedVehicleSpeed, d))
	})

	t.Run("engine speed", func(t *testing.T) {
		d := ecan.Data{0, 0, 0, 0x40, 0x1F}
		assert.Equal(t, 1000.0, Physical(EngineSpeed, d))
	})

	t.Run("raw ignores scale", func(t *testing.T) {
		d := ecan.Data{0x0C, 0x20, 0xA1, 0x07}
		assert.Equal(t, 12.0, Raw(Satellites, d))
		assert.Equal(t, float64(0x07A120), Raw(GPSMicroseconds, d))
	})
}
