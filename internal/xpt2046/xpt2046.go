// Package xpt2046 drives the XPT2046 4-wire resistive touch screen
// controller over SPI.
//
// Datasheet
//
// https://www.buydisplay.com/download/ic/XPT2046.pdf
package xpt2046

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Control bytes: start bit, channel, 12 bit mode, differential, power bits.
const (
	cmdZ1        byte = 0xB1
	cmdZ2        byte = 0xC1
	cmdX         byte = 0xD1
	cmdY         byte = 0x91
	cmdPowerDown byte = 0xD0
)

const maxValue = 4095

// Opts holds the configuration for the controller.
type Opts struct {
	// Freq is the SPI clock. The chip is rated up to 2.5MHz.
	Freq physic.Frequency
	// Rotation maps the raw axes to the panel orientation, 0 to 3.
	Rotation int
	// ZThreshold is the pressure at or above which the panel counts as
	// touched.
	ZThreshold int
}

// DefaultOpts is suitable for the common 2.8" ILI9341 modules.
var DefaultOpts = Opts{
	Freq:       2 * physic.MegaHertz,
	Rotation:   0,
	ZThreshold: 400,
}

// Point is a reading already rotated to the panel orientation.
type Point struct {
	X, Y, Z int
}

// Dev is an open XPT2046.
type Dev struct {
	c     spi.Conn
	irq   gpio.PinIn
	opts  Opts
	lastX int
	lastY int
}

// New opens the controller on p. irq is the PENIRQ line; it may be nil, in
// which case touches are detected from pressure alone.
func New(p spi.Port, irq gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.Rotation < 0 || opts.Rotation > 3 {
		return nil, fmt.Errorf("xpt2046: invalid rotation %d", opts.Rotation)
	}
	freq := opts.Freq
	if freq == 0 {
		freq = DefaultOpts.Freq
	}
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("xpt2046: connect: %w", err)
	}
	if irq != nil && irq != gpio.INVALID {
		if err := irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("xpt2046: irq: %w", err)
		}
	} else {
		irq = nil
	}
	return &Dev{c: c, irq: irq, opts: *opts}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("XPT2046{%s}", d.c)
}

// SetRotation changes the orientation applied to subsequent points.
func (d *Dev) SetRotation(r int) error {
	if r < 0 || r > 3 {
		return fmt.Errorf("xpt2046: invalid rotation %d", r)
	}
	d.opts.Rotation = r
	return nil
}

// Halt powers the ADC down.
func (d *Dev) Halt() error {
	_, err := d.read(cmdPowerDown)
	return err
}

// Touched reports whether the pressure is at or above the threshold. When a
// PENIRQ pin is wired and reads high the bus is not touched at all.
func (d *Dev) Touched() (bool, error) {
	if d.irq != nil && d.irq.Read() == gpio.High {
		return false, nil
	}
	z, err := d.pressure()
	if err != nil {
		return false, err
	}
	return z >= d.opts.ZThreshold, nil
}

// Point reads pressure and, when pressed, position. Below the threshold
// the previous position is returned with the fresh pressure.
func (d *Dev) Point() (Point, error) {
	z, err := d.pressure()
	if err != nil {
		return Point{}, err
	}
	if z >= d.opts.ZThreshold {
		// the first conversion after the pressure reads is noisy
		if _, err := d.read(cmdY); err != nil {
			return Point{}, err
		}
		var xs, ys [3]int
		for i := range xs {
			if xs[i], err = d.read(cmdX); err != nil {
				return Point{}, err
			}
			if ys[i], err = d.read(cmdY); err != nil {
				return Point{}, err
			}
		}
		d.lastX, d.lastY = bestTwoAvg(xs), bestTwoAvg(ys)
	}
	if _, err := d.read(cmdPowerDown); err != nil {
		return Point{}, err
	}
	x, y := rotate(d.lastX, d.lastY, d.opts.Rotation)
	return Point{X: x, Y: y, Z: z}, nil
}

func (d *Dev) pressure() (int, error) {
	z1, err := d.read(cmdZ1)
	if err != nil {
		return 0, err
	}
	z2, err := d.read(cmdZ2)
	if err != nil {
		return 0, err
	}
	z := z1 + maxValue - z2
	if z < 0 {
		z = 0
	}
	return z, nil
}

// read performs one conversion and returns the 12 bit result.
func (d *Dev) read(cmd byte) (int, error) {
	w := [3]byte{cmd, 0, 0}
	var r [3]byte
	if err := d.c.Tx(w[:], r[:]); err != nil {
		return 0, fmt.Errorf("xpt2046: tx 0x%02x: %w", cmd, err)
	}
	return (int(r[1])<<8 | int(r[2])) >> 3, nil
}

// bestTwoAvg averages the two closest of three readings.
func bestTwoAvg(v [3]int) int {
	da := abs(v[0] - v[1])
	db := abs(v[0] - v[2])
	dc := abs(v[2] - v[1])
	switch {
	case da <= db && da <= dc:
		return (v[0] + v[1]) / 2
	case db <= da && db <= dc:
		return (v[0] + v[2]) / 2
	default:
		return (v[1] + v[2]) / 2
	}
}

func rotate(x, y, r int) (int, int) {
	switch r {
	case 0:
		return maxValue - y, x
	case 1:
		return x, y
	case 2:
		return y, maxValue - x
	default:
		return maxValue - x, maxValue - y
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
