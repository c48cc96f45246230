// Package calib derives and applies the two-corner linear calibration that
// maps raw touch controller coordinates to screen pixels.
package calib

import (
	"errors"
	"fmt"
	"image"

	"touch-calibration-go/internal/touch"
)

// ErrDegenerate is returned when both corners share a raw value on one
// axis, which leaves that axis without a slope.
var ErrDegenerate = errors.New("calib: corners share a raw coordinate")

// LinearMap rescales in from [inMin, inMax] to [outMin, outMax] with
// truncating integer arithmetic. Values outside the input range extrapolate.
// An empty input range yields -1.
func LinearMap(in, inMin, inMax, outMin, outMax int) int {
	run := inMax - inMin
	if run == 0 {
		return -1
	}
	return (in-inMin)*(outMax-outMin)/run + outMin
}

// Axis is a one dimensional linear map.
type Axis struct {
	RawMin, RawMax int
	OutMin, OutMax int
}

// Map applies the axis to a raw value.
func (a Axis) Map(raw int) int {
	return LinearMap(raw, a.RawMin, a.RawMax, a.OutMin, a.OutMax)
}

func (a Axis) String() string {
	return fmt.Sprintf("(%d->%d, %d->%d)", a.RawMin, a.OutMin, a.RawMax, a.OutMax)
}

// Mapping is the per-axis raw to pixel map defined by the top-left and
// bottom-right corner references.
type Mapping struct {
	TopLeft     touch.Corner
	BottomRight touch.Corner
	X, Y        Axis
}

// NewMapping maps the top-left corner to pixel (1, 1) and the bottom-right
// corner to (width, height).
func NewMapping(tl, br touch.Corner, width, height int) (Mapping, error) {
	if tl.X == br.X || tl.Y == br.Y {
		return Mapping{}, fmt.Errorf("%w: top left %v, bottom right %v", ErrDegenerate, tl, br)
	}
	return Mapping{
		TopLeft:     tl,
		BottomRight: br,
		X:           Axis{RawMin: tl.X, RawMax: br.X, OutMin: 1, OutMax: width},
		Y:           Axis{RawMin: tl.Y, RawMax: br.Y, OutMin: 1, OutMax: height},
	}, nil
}

// Apply maps a raw position to a pixel position.
func (m Mapping) Apply(x, y int) image.Point {
	return image.Pt(m.X.Map(x), m.Y.Map(y))
}
