// Package stats summarises decoded GPS signals.
package stats

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/BIwashi/cangps/pkg/signal"
)

// ErrNoGPSData is returned when a bundle carries no GPS samples at all.
var ErrNoGPSData = errors.New("no GPS data in capture")

// Range describes the spread of one signal. Count is 0 when the signal was absent.
type Range struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

func newRange(x []float64) Range {
	if len(x) == 0 {
		return Range{}
	}
	return Range{
		Count: len(x),
		Min:   floats.Min(x),
		Max:   floats.Max(x),
		Mean:  stat.Mean(x, nil),
	}
}

// GPSSummary is the GPS section of a capture report.
type GPSSummary struct {
	// GPS epoch seconds of the first and last time sample.
	TimeStart float64
	TimeEnd   float64

	Satellites Range

	// MostFrequentSatellites is the modal satellite count; ties resolve to the count seen first.
	MostFrequentSatellites int

	Speed   Range
	Heading Range
}

// mostFrequent returns the most common value of x, preferring the value that
// appeared first among equally common ones. It returns 0 for an empty x.
func mostFrequent(x []int) int {
	counts := make(map[int]int, len(x))
	best, bestCount := 0, 0
	for _, v := range x {
		counts[v]++
	}
	for _, v := range x {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// Duration returns the GPS time covered by the capture in seconds.
func (s GPSSummary) Duration() float64 {
	return s.TimeEnd - s.TimeStart
}

// SummarizeGPS computes the GPS report of b.
func SummarizeGPS(b *signal.Bundle) (GPSSummary, error) {
	if b.GPSTime.Len() == 0 && b.Satellites.Len() == 0 && b.GPSSpeed.Len() == 0 && b.Heading.Len() == 0 {
		return GPSSummary{}, ErrNoGPSData
	}

	var s GPSSummary
	if n := b.GPSTime.Len(); n > 0 {
		s.TimeStart = b.GPSTime.Values[0]
		s.TimeEnd = b.GPSTime.Values[n-1]
	}

	s.Satellites = newRange(b.Satellites.Floats())
	s.MostFrequentSatellites = mostFrequent(b.Satellites.Values)

	s.Speed = newRange(b.GPSSpeed.Values)
	s.Heading = newRange(b.Heading.Values)
	return s, nil
}

// Fprint writes the report in human-readable form.
func (s GPSSummary) Fprint(w io.Writer) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("GPS time ran for %g seconds, from %f to %f\n", s.Duration(), s.TimeStart, s.TimeEnd)
	if s.Satellites.Count > 0 {
		printf("Satellites ranged from %d to %d, %d most frequently\n",
			int(s.Satellites.Min), int(s.Satellites.Max), s.MostFrequentSatellites)
	}
	if s.Speed.Count > 0 {
		printf("GPS speed ranged from %g to %g, mean %g\n", s.Speed.Min, s.Speed.Max, s.Speed.Mean)
	}
	if s.Heading.Count > 0 {
		printf("Heading ranged from %g to %g degrees, mean %g\n", s.Heading.Min, s.Heading.Max, s.Heading.Mean)
	}
	return errors.Wrap(err, "print gps summary")
}
