package kml

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyDocument = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
  </Document>
</kml>
`

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   string
	}{
		{
			name: "no points",
			want: emptyDocument,
		},
		{
			name:   "one point",
			points: []Point{{Longitude: -122.4194155, Latitude: 37.7749295}},
			want: `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Location 1</name>
      <Point>
        <coordinates>-122.4194155,37.7749295,0</coordinates>
      </Point>
    </Placemark>
  </Document>
</kml>
`,
		},
		{
			name:   "numbering and integral values",
			points: []Point{{Longitude: 10, Latitude: 20}, {Longitude: 10.5, Latitude: -0.25}},
			want: `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Location 1</name>
      <Point>
        <coordinates>10.0,20.0,0</coordinates>
      </Point>
    </Placemark>
    <Placemark>
      <name>Location 2</name>
      <Point>
        <coordinates>10.5,-0.25,0</coordinates>
      </Point>
    </Placemark>
  </Document>
</kml>
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.points))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{10, "10.0"},
		{-0.25, "-0.25"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{42.3464127, "42.3464127"},
		{-122.4194155, "-122.4194155"},
		{423464127 / 1e7, "42.3464127"},
		{0.0001, "0.0001"},
		{1e-05, "1e-05"},
		{-1.5e-05, "-1.5e-05"},
		{-1e-7, "-1e-07"},
		{1e16, "1e+16"},
		{123456789012345.6, "123456789012345.6"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCoordinate(tt.v))
		})
	}
}

func TestPoints(t *testing.T) {
	lon := []float64{1, 2, 3}
	lat := []float64{4, 5}

	assert.Equal(t, []Point{{1, 4}, {2, 5}}, Points(lon, lat))
	assert.Empty(t, Points(nil, lat))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.kml")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	require.NoError(t, WriteFile(path, nil))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, emptyDocument, string(got))
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "track.kml"), nil)
	assert.Error(t, err)
}
