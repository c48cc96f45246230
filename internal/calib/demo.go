package calib

import (
	"context"
	"fmt"
	"image"
	"time"

	log "github.com/sirupsen/logrus"

	"touch-calibration-go/internal/touch"
)

const (
	DefaultDemoThreshold = 500
	DefaultDrawDelay     = 20 * time.Millisecond
	markerRadius         = 2
)

// Demo draws a marker wherever the panel is pressed firmly, using a
// finished Mapping.
type Demo struct {
	Sampler *touch.Sampler
	Screen  Screen
	Mapping Mapping

	Window    int
	Threshold int
	DrawDelay time.Duration
}

// Run calls Step until ctx is done.
func (d *Demo) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, _, err := d.Step(); err != nil {
			return err
		}
	}
}

// Step polls once. It returns the pixel that was marked and whether a
// marker was drawn.
func (d *Demo) Step() (image.Point, bool, error) {
	touched, err := d.Sampler.Sensor.Touched()
	if err != nil {
		return image.Point{}, false, fmt.Errorf("calib: poll: %w", err)
	}
	if !touched {
		return image.Point{}, false, nil
	}
	window := d.Window
	if window == 0 {
		window = touch.DefaultWindow
	}
	p, err := d.Sampler.Average(window)
	if err != nil {
		return image.Point{}, false, err
	}
	if p.Z <= d.Threshold {
		return image.Point{}, false, nil
	}

	pt := d.Mapping.Apply(p.X, p.Y)
	log.WithFields(log.Fields{"raw": p.String(), "x": pt.X, "y": pt.Y}).Debug("calib: mapped touch")
	d.Screen.FillCircle(pt.X, pt.Y, markerRadius, Red)
	if err := d.Screen.Flush(); err != nil {
		return pt, true, fmt.Errorf("calib: draw marker: %w", err)
	}
	if d.Sampler.Clock != nil && d.DrawDelay > 0 {
		d.Sampler.Clock.Sleep(d.DrawDelay)
	}
	return pt, true, nil
}
