package ili9341

import (
	"errors"
	"image"
	"image/color"
	"testing"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// write is one Tx on the bus with the level of the data/command line.
type write struct {
	data bool
	b    []byte
}

type bus struct {
	dc     *gpiotest.Pin
	writes []write
	freq   physic.Frequency
	err    error
}

func (b *bus) String() string                      { return "bus" }
func (b *bus) LimitSpeed(f physic.Frequency) error { return nil }
func (b *bus) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	b.freq = f
	return b, nil
}
func (b *bus) Duplex() conn.Duplex                 { return conn.Half }
func (b *bus) TxPackets(p []spi.Packet) error      { return errors.New("not supported") }
func (b *bus) Tx(w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.writes = append(b.writes, write{data: b.dc.Read() == gpio.High, b: append([]byte(nil), w...)})
	return nil
}

// commands returns the command bytes sent, in order.
func (b *bus) commands() []byte {
	var out []byte
	for _, w := range b.writes {
		if !w.data {
			out = append(out, w.b...)
		}
	}
	return out
}

// after returns the data written after the last occurrence of cmd.
func (b *bus) after(cmd byte) []byte {
	var out []byte
	for i := len(b.writes) - 1; i >= 0; i-- {
		w := b.writes[i]
		if !w.data && w.b[0] == cmd {
			for _, d := range b.writes[i+1:] {
				if !d.data {
					break
				}
				out = append(out, d.b...)
			}
			return out
		}
	}
	return nil
}

func newDev(t *testing.T, opts *Opts) (*Dev, *bus) {
	dc := &gpiotest.Pin{N: "DC"}
	b := &bus{dc: dc}
	d, err := New(b, dc, nil, opts)
	qt.Assert(t, err, qt.IsNil)
	return d, b
}

func TestInitSequence(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)

	cmds := b.commands()
	c.Assert(cmds[0], qt.Equals, cmdSWRESET)
	c.Assert(cmds[len(cmds)-3:], qt.DeepEquals, []byte{cmdMADCTL, cmdSLPOUT, cmdDISON})
	c.Assert(b.after(cmdPIXFMT), qt.DeepEquals, []byte{0x55})
	c.Assert(b.after(cmdMADCTL), qt.DeepEquals, []byte{madctlMX | madctlBGR})
	c.Assert(b.freq, qt.Equals, 40*physic.MegaHertz)
	c.Assert(d.Bounds(), qt.Equals, image.Rect(0, 0, 240, 320))
}

func TestHardwareReset(t *testing.T) {
	c := qt.New(t)
	dc := &gpiotest.Pin{N: "DC"}
	rst := &gpiotest.Pin{N: "RST"}
	b := &bus{dc: dc}

	_, err := New(b, dc, rst, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(b.commands()[0], qt.Not(qt.Equals), cmdSWRESET)
	c.Assert(rst.Read(), qt.Equals, gpio.High)
}

func TestRotation(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)

	for _, tc := range []struct {
		r      Rotation
		madctl byte
		bounds image.Rectangle
	}{
		{Rot0, madctlMX | madctlBGR, image.Rect(0, 0, 240, 320)},
		{Rot90, madctlMV | madctlBGR, image.Rect(0, 0, 320, 240)},
		{Rot180, madctlMY | madctlBGR, image.Rect(0, 0, 240, 320)},
		{Rot270, madctlMX | madctlMY | madctlMV | madctlBGR, image.Rect(0, 0, 320, 240)},
	} {
		c.Assert(d.SetRotation(tc.r), qt.IsNil)
		c.Assert(b.after(cmdMADCTL), qt.DeepEquals, []byte{tc.madctl})
		c.Assert(d.Bounds(), qt.Equals, tc.bounds)
		c.Assert(d.Rotation(), qt.Equals, tc.r)
	}
	c.Assert(d.SetRotation(4), qt.IsNotNil)
}

func TestDrawWindowAndPixels(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)
	b.writes = nil

	img := image.NewRGBA(image.Rect(0, 0, 240, 320))
	img.Set(10, 20, color.RGBA{0xff, 0, 0, 0xff})
	img.Set(11, 20, color.RGBA{0, 0xff, 0, 0xff})
	img.Set(10, 21, color.RGBA{0, 0, 0xff, 0xff})
	img.Set(11, 21, color.RGBA{0xff, 0xff, 0xff, 0xff})

	r := image.Rect(10, 20, 12, 22)
	c.Assert(d.Draw(r, img, r.Min), qt.IsNil)
	c.Assert(b.commands(), qt.DeepEquals, []byte{cmdCASET, cmdPASET, cmdRAMWR})
	c.Assert(b.after(cmdCASET), qt.DeepEquals, []byte{0, 10, 0, 11})
	c.Assert(b.after(cmdPASET), qt.DeepEquals, []byte{0, 20, 0, 21})
	c.Assert(b.after(cmdRAMWR), qt.DeepEquals, []byte{
		0xf8, 0x00, 0x07, 0xe0,
		0x00, 0x1f, 0xff, 0xff,
	})

	// same window again skips CASET and PASET
	b.writes = nil
	c.Assert(d.Draw(r, img, r.Min), qt.IsNil)
	c.Assert(b.commands(), qt.DeepEquals, []byte{cmdRAMWR})
}

func TestDrawLargeAreaIsChunked(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)
	b.writes = nil

	img := image.NewRGBA(d.Bounds())
	c.Assert(d.Draw(d.Bounds(), img, image.Point{}), qt.IsNil)

	total := 0
	for _, w := range b.writes {
		c.Assert(len(w.b) <= maxChunk, qt.IsTrue)
		if w.data {
			total += len(w.b)
		}
	}
	// window parameters plus two bytes per pixel
	c.Assert(total, qt.Equals, 4+4+240*320*2)
	c.Assert(b.after(cmdCASET), qt.DeepEquals, []byte{0, 0, 0, 239})
	c.Assert(b.after(cmdPASET), qt.DeepEquals, []byte{0, 0, 0x01, 0x3f})
}

func TestDrawClips(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)
	b.writes = nil

	img := image.NewRGBA(image.Rect(0, 0, 300, 400))
	c.Assert(d.Draw(image.Rect(230, 310, 300, 400), img, image.Pt(230, 310)), qt.IsNil)
	c.Assert(b.after(cmdCASET), qt.DeepEquals, []byte{0, 230, 0, 239})
	c.Assert(b.after(cmdPASET), qt.DeepEquals, []byte{0x01, 0x36, 0x01, 0x3f})
	c.Assert(len(b.after(cmdRAMWR)), qt.Equals, 10*10*2)

	b.writes = nil
	c.Assert(d.Draw(image.Rect(400, 400, 500, 500), img, image.Point{}), qt.IsNil)
	c.Assert(b.writes, qt.HasLen, 0)
}

func TestHalt(t *testing.T) {
	c := qt.New(t)
	d, b := newDev(t, nil)
	b.writes = nil

	c.Assert(d.Halt(), qt.IsNil)
	c.Assert(b.commands(), qt.DeepEquals, []byte{cmdDISOFF, cmdSLPIN})
}

func TestBusError(t *testing.T) {
	c := qt.New(t)
	dc := &gpiotest.Pin{N: "DC"}
	boom := errors.New("spi")
	_, err := New(&bus{dc: dc, err: boom}, dc, nil, nil)
	c.Assert(errors.Is(err, boom), qt.IsTrue)
}

func TestMissingDC(t *testing.T) {
	c := qt.New(t)
	_, err := New(&bus{}, nil, nil, nil)
	c.Assert(err, qt.IsNotNil)
}

func TestRGB565(t *testing.T) {
	c := qt.New(t)
	c.Assert(rgb565(color.RGBA{0xff, 0, 0, 0xff}), qt.Equals, uint16(0xf800))
	c.Assert(rgb565(color.RGBA{0, 0xff, 0, 0xff}), qt.Equals, uint16(0x07e0))
	c.Assert(rgb565(color.RGBA{0, 0, 0xff, 0xff}), qt.Equals, uint16(0x001f))
	c.Assert(rgb565(color.White), qt.Equals, uint16(0xffff))
}
