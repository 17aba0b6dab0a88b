// Package kml writes decoded GPS positions as KML placemarks.
package kml

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
)

const documentTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
{{- range $i, $p := .}}
    <Placemark>
      <name>Location {{add $i 1}}</name>
      <Point>
        <coordinates>{{coord $p.Longitude}},{{coord $p.Latitude}},0</coordinates>
      </Point>
    </Placemark>
{{- end}}
  </Document>
</kml>
`

var document = template.Must(template.New("kml").Funcs(template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"coord": FormatCoordinate,
}).Parse(documentTemplate))

// FormatCoordinate renders v with the fewest digits that round-trip: fixed
// notation with at least one decimal (10.0) for exponents in [-4, 16),
// scientific notation with a two-digit exponent (1e-05) otherwise.
func FormatCoordinate(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Point is one placemark position in degrees.
type Point struct {
	Longitude float64
	Latitude  float64
}

// Points pairs longitude and latitude by index. Extra values in the longer
// slice are ignored.
func Points(longitude, latitude []float64) []Point {
	n := min(len(longitude), len(latitude))
	points := make([]Point, n)
	for i := range n {
		points[i] = Point{Longitude: longitude[i], Latitude: latitude[i]}
	}
	return points
}

// Write renders a KML document with one placemark per point.
func Write(w io.Writer, points []Point) error {
	if err := document.Execute(w, points); err != nil {
		return errors.Wrap(err, "render kml")
	}
	return nil
}

// WriteFile writes the KML document to path, replacing any existing file.
func WriteFile(path string, points []Point) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create kml file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close kml file")
		}
	}()

	return Write(f, points)
}
