package sim

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

const plotMargin = 40

// Plot renders setpoint, measured RPM, true motor RPM and control output
// against time.
//
// Colors: setpoint blue, measured red, motor grey, output green.
func Plot(samples []Sample, width, height int) image.Image {
	c := gg.NewContext(width, height)
	c.SetRGB(1, 1, 1)
	c.Clear()

	// Axes
	c.SetRGB(0, 0, 0)
	c.SetLineWidth(1)
	c.DrawLine(plotMargin, plotMargin, plotMargin, float64(height-plotMargin))
	c.DrawLine(plotMargin, float64(height)/2, float64(width-plotMargin), float64(height)/2)
	c.Stroke()

	if len(samples) == 0 {
		return c.Image()
	}

	tMax := samples[len(samples)-1].Time.Seconds()
	yMax := 1.0
	for _, s := range samples {
		yMax = math.Max(yMax, math.Abs(float64(s.Setpoint)))
		yMax = math.Max(yMax, float64(s.RPM))
		yMax = math.Max(yMax, math.Abs(s.MotorRPM))
		yMax = math.Max(yMax, math.Abs(float64(s.Output)))
	}

	x := func(s Sample) float64 {
		if tMax == 0 {
			return plotMargin
		}
		return plotMargin + s.Time.Seconds()/tMax*float64(width-2*plotMargin)
	}
	y := func(v float64) float64 {
		return float64(height)/2 - v/yMax*(float64(height)/2-plotMargin)
	}

	series := []struct {
		r, g, b float64
		value   func(Sample) float64
	}{
		{0, 0, 1, func(s Sample) float64 { return float64(s.Setpoint) }},
		{1, 0, 0, func(s Sample) float64 { return float64(s.RPM) }},
		{0.5, 0.5, 0.5, func(s Sample) float64 { return s.MotorRPM }},
		{0, 0.6, 0, func(s Sample) float64 { return float64(s.Output) }},
	}
	c.SetLineWidth(2)
	for _, line := range series {
		c.SetRGB(line.r, line.g, line.b)
		for i, s := range samples {
			if i == 0 {
				c.MoveTo(x(s), y(line.value(s)))
			} else {
				c.LineTo(x(s), y(line.value(s)))
			}
		}
		c.Stroke()
	}

	c.SetRGB(0, 0, 0)
	c.DrawString(fmt.Sprintf("%.0f", yMax), 4, plotMargin)
	c.DrawString(fmt.Sprintf("%.1fs", tMax), float64(width-plotMargin), float64(height)/2+14)
	return c.Image()
}

// SavePlot renders samples to a PNG file
func SavePlot(samples []Sample, path string, width, height int) error {
	return gg.SavePNG(path, Plot(samples, width, height))
}
