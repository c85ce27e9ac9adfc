//go:build !tinygo

package calibrate

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var ErrNoTrials = errors.New("no trials to plot")

// SavePlot draws measured and expected rotation time against speed. The file format follows the
// extension of path (png, svg, pdf, ...)
func SavePlot(r Result, path string) error {
	if len(r.Trials) == 0 {
		return ErrNoTrials
	}

	measured := make(plotter.XYs, len(r.Trials))
	expected := make(plotter.XYs, len(r.Trials))
	for i, t := range r.Trials {
		measured[i] = plotter.XY{X: t.Speed, Y: t.Elapsed.Seconds()}
		expected[i] = plotter.XY{X: t.Speed, Y: t.Expected.Seconds()}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stepper max speed: %g rpm", r.MaxSpeed)
	p.X.Label.Text = "Speed (rpm)"
	p.Y.Label.Text = "Time (s)"
	p.Add(plotter.NewGrid())

	measuredLine, measuredPoints, err := plotter.NewLinePoints(measured)
	if err != nil {
		return fmt.Errorf("error creating measured line: %w", err)
	}
	measuredLine.Color = color.RGBA{R: 200, A: 255}
	measuredPoints.Color = color.RGBA{R: 200, A: 255}

	expectedLine, err := plotter.NewLine(expected)
	if err != nil {
		return fmt.Errorf("error creating expected line: %w", err)
	}
	expectedLine.Color = color.RGBA{B: 200, A: 255}
	expectedLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(measuredLine, measuredPoints, expectedLine)
	p.Legend.Add("measured", measuredLine, measuredPoints)
	p.Legend.Add("expected", expectedLine)

	err = p.Save(6*vg.Inch, 4*vg.Inch, path)
	if err != nil {
		return fmt.Errorf("error saving plot: %w", err)
	}
	return nil
}
