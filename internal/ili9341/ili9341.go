// Package ili9341 drives ILI9341 240x320 TFT panels over a 4-wire SPI bus
// with a separate data/command line.
//
// Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/ILI9341.pdf
package ili9341

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	defaultWidth  = 240 // rotation 0
	defaultHeight = 320
	// spidev rejects larger transfers by default
	maxChunk = 4096
)

// Rotation is the clock-wise panel orientation.
type Rotation uint8

const (
	Rot0   Rotation = iota // 240x320
	Rot90                  // 320x240
	Rot180                 // 240x320
	Rot270                 // 320x240
)

// Opts holds the configuration for the panel.
type Opts struct {
	W, H     int
	Freq     physic.Frequency
	Rotation Rotation
	// BGR selects blue-green-red subpixel order, which most modules use.
	BGR bool
}

// DefaultOpts matches the common 2.8" SPI modules.
var DefaultOpts = Opts{
	W:        defaultWidth,
	H:        defaultHeight,
	Freq:     40 * physic.MegaHertz,
	Rotation: Rot0,
	BGR:      true,
}

// Dev is an open ILI9341 panel.
type Dev struct {
	c    spi.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	opts Opts
	rect image.Rectangle // current CASET/PASET window, inclusive corners
	buf  []byte
}

// New opens the panel on p, resets it and turns it on. rst may be nil, in
// which case a software reset is issued.
func New(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	o := *opts
	if o.W == 0 {
		o.W = defaultWidth
	}
	if o.H == 0 {
		o.H = defaultHeight
	}
	if o.Freq == 0 {
		o.Freq = DefaultOpts.Freq
	}
	if o.Rotation > Rot270 {
		return nil, fmt.Errorf("ili9341: invalid rotation %d", o.Rotation)
	}
	if dc == nil || dc == gpio.INVALID {
		return nil, fmt.Errorf("ili9341: data/command pin is required")
	}
	if rst == gpio.INVALID {
		rst = nil
	}
	c, err := p.Connect(o.Freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9341: connect: %w", err)
	}
	d := &Dev{c: c, dc: dc, rst: rst, opts: o, rect: image.Rect(-1, -1, -1, -1), buf: make([]byte, maxChunk)}
	if err := d.dc.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("ili9341: dc: %w", err)
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ILI9341{%s, %dx%d}", d.c, d.opts.W, d.opts.H)
}

// ColorModel is 16 bit RGB565 on the wire; RGBA is accepted.
func (d *Dev) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds follows the current rotation.
func (d *Dev) Bounds() image.Rectangle {
	if d.opts.Rotation == Rot90 || d.opts.Rotation == Rot270 {
		return image.Rect(0, 0, d.opts.H, d.opts.W)
	}
	return image.Rect(0, 0, d.opts.W, d.opts.H)
}

// Rotation returns the current orientation.
func (d *Dev) Rotation() Rotation {
	return d.opts.Rotation
}

// SetRotation changes the orientation of subsequent drawing.
func (d *Dev) SetRotation(r Rotation) error {
	if r > Rot270 {
		return fmt.Errorf("ili9341: invalid rotation %d", r)
	}
	d.opts.Rotation = r
	d.rect = image.Rect(-1, -1, -1, -1)
	return d.writeCmd(cmdMADCTL, d.madctl())
}

// Draw copies the part of src starting at sp into dstRect on the panel.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	r := dstRect.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(dstRect.Min))
	if err := d.setWindow(r); err != nil {
		return err
	}
	if err := d.writeCmd(cmdRAMWR); err != nil {
		return err
	}

	n := 0
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := rgb565(src.At(sp.X+x, sp.Y+y))
			d.buf[n] = byte(c >> 8)
			d.buf[n+1] = byte(c)
			n += 2
			if n == len(d.buf) {
				if err := d.c.Tx(d.buf[:n], nil); err != nil {
					return fmt.Errorf("ili9341: RAMWR: %w", err)
				}
				n = 0
			}
		}
	}
	if n > 0 {
		if err := d.c.Tx(d.buf[:n], nil); err != nil {
			return fmt.Errorf("ili9341: RAMWR: %w", err)
		}
	}
	return nil
}

// Halt turns the display off and puts the controller to sleep.
func (d *Dev) Halt() error {
	if err := d.writeCmd(cmdDISOFF); err != nil {
		return err
	}
	return d.writeCmd(cmdSLPIN)
}

var _ display.Drawer = (*Dev)(nil)

func (d *Dev) reset() error {
	if d.rst != nil {
		for _, step := range []struct {
			l    gpio.Level
			wait time.Duration
		}{
			{gpio.High, 5 * time.Millisecond},
			{gpio.Low, 20 * time.Millisecond},
			{gpio.High, 150 * time.Millisecond},
		} {
			if err := d.rst.Out(step.l); err != nil {
				return fmt.Errorf("ili9341: reset: %w", err)
			}
			time.Sleep(step.wait)
		}
		return nil
	}
	if err := d.writeCmd(cmdSWRESET); err != nil {
		return err
	}
	time.Sleep(150 * time.Millisecond)
	return nil
}

func (d *Dev) init() error {
	for _, c := range initSequence {
		if err := d.writeCmd(c.cmd, c.data...); err != nil {
			return err
		}
	}
	if err := d.writeCmd(cmdMADCTL, d.madctl()); err != nil {
		return err
	}
	if err := d.writeCmd(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	return d.writeCmd(cmdDISON)
}

// madctl returns the memory access control byte for the rotation.
func (d *Dev) madctl() byte {
	var m byte
	switch d.opts.Rotation {
	case Rot0:
		m = madctlMX
	case Rot90:
		m = madctlMV
	case Rot180:
		m = madctlMY
	case Rot270:
		m = madctlMX | madctlMY | madctlMV
	}
	if d.opts.BGR {
		m |= madctlBGR
	}
	return m
}

// setWindow defines the area written by the next RAMWR, skipping the
// column or page command when it is unchanged.
func (d *Dev) setWindow(r image.Rectangle) error {
	x0, x1 := r.Min.X, r.Max.X-1
	y0, y1 := r.Min.Y, r.Max.Y-1
	if x0 != d.rect.Min.X || x1 != d.rect.Max.X {
		if err := d.writeCmd(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
			return err
		}
		d.rect.Min.X, d.rect.Max.X = x0, x1
	}
	if y0 != d.rect.Min.Y || y1 != d.rect.Max.Y {
		if err := d.writeCmd(cmdPASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
			return err
		}
		d.rect.Min.Y, d.rect.Max.Y = y0, y1
	}
	return nil
}

// writeCmd sends cmd with dc low, then its parameters with dc high.
func (d *Dev) writeCmd(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("ili9341: dc: %w", err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("ili9341: cmd 0x%02x: %w", cmd, err)
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("ili9341: dc: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.c.Tx(data, nil); err != nil {
		return fmt.Errorf("ili9341: cmd 0x%02x data: %w", cmd, err)
	}
	return nil
}

func rgb565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16((r>>11)<<11 | (g>>10)<<5 | b>>11)
}
