// Package chart renders decoded speed signals as PNG charts.
package chart

import (
	"image/color"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/BIwashi/cangps/pkg/signal"
)

var (
	vehicleColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	engineColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Capture is one decoded file to chart. Name prefixes the panel titles
// when non-empty.
type Capture struct {
	Name   string
	Bundle *signal.Bundle
}

// Size is the output image size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// SizeInches builds a Size from inches.
func SizeInches(width, height float64) Size {
	return Size{Width: vg.Length(width) * vg.Inch, Height: vg.Length(height) * vg.Inch}
}

// SpeedRow returns the vehicle speed and engine speed panels of one capture.
func SpeedRow(c Capture) ([]*plot.Plot, error) {
	prefix := ""
	if c.Name != "" {
		prefix = c.Name + " "
	}

	vehicle, err := seriesPlot(prefix+"Vehicle Speed", "Vehicle Speed (km/h)", "Vehicle Speed", vehicleColor, &c.Bundle.VehicleSpeed)
	if err != nil {
		return nil, errors.Wrap(err, "vehicle speed plot")
	}
	engine, err := seriesPlot(prefix+"Engine Speed", "Engine Speed (rpm)", "Engine Speed", engineColor, &c.Bundle.EngineSpeed)
	if err != nil {
		return nil, errors.Wrap(err, "engine speed plot")
	}
	return []*plot.Plot{vehicle, engine}, nil
}

func seriesPlot(title, yLabel, legend string, col color.Color, s *signal.Series[float64]) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	// An empty panel keeps its axes and grid.
	if s.Len() == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, s.Len())
	for i := range pts {
		pts[i].X = s.Timestamps[i]
		pts[i].Y = s.Values[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = col
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(legend, line)
	p.Legend.Top = true
	return p, nil
}

// WriteSpeeds renders one row of speed panels per capture as a PNG.
func WriteSpeeds(w io.Writer, size Size, captures ...Capture) error {
	if len(captures) == 0 {
		return errors.New("no captures to plot")
	}

	rows := make([][]*plot.Plot, 0, len(captures))
	for _, c := range captures {
		row, err := SpeedRow(c)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	img := vgimg.New(size.Width, size.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      len(rows[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(rows, tiles, dc)
	for j := range rows {
		for i := range rows[j] {
			rows[j][i].Draw(canvases[j][i])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

// WriteSpeedsFile renders the speed panels into a PNG file at path.
func WriteSpeedsFile(path string, size Size, captures ...Capture) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create plot file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close plot file")
		}
	}()

	return WriteSpeeds(f, size, captures...)
}
