// Package touch turns raw resistive touch controller readings into
// denoised samples and per-corner reference points.
package touch

import (
	"errors"
	"fmt"
	"time"
)

// ErrWindow is returned when an averaging window smaller than one sample is
// requested.
var ErrWindow = errors.New("touch: averaging window must be at least 1")

// Sample is one raw reading in controller space. Z is the pressure proxy,
// higher means firmer contact.
type Sample struct {
	X, Y, Z int
}

func (s Sample) String() string {
	return fmt.Sprintf("X = %4d | Y = %4d | Z = %4d", s.X, s.Y, s.Z)
}

// Averaged is the mean of a window of consecutive samples. Z is taken from
// the first sample of the window, not averaged.
type Averaged Sample

func (a Averaged) String() string {
	return Sample(a).String()
}

// Corner is the averaged raw position associated with one screen corner.
type Corner struct {
	X, Y int
}

// Sensor is a polled touch controller.
type Sensor interface {
	// Touched reports whether the panel is currently pressed.
	Touched() (bool, error)
	// Read returns the current raw reading.
	Read() (Sample, error)
}

// Clock sleeps. Tests replace it to run without wall-clock delays.
type Clock interface {
	Sleep(d time.Duration)
}

// SystemClock sleeps using time.Sleep.
type SystemClock struct{}

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
