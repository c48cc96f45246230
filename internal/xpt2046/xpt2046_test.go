package xpt2046

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// adc answers each control byte with a fixed 12 bit conversion. Position
// channels can cycle through several values.
type adc struct {
	values map[byte][]int
	next   map[byte]int
	cmds   []byte
	err    error
}

func newADC(z1, z2, x, y int) *adc {
	return &adc{
		values: map[byte][]int{cmdZ1: {z1}, cmdZ2: {z2}, cmdX: {x}, cmdY: {y}, cmdPowerDown: {0}},
		next:   map[byte]int{},
	}
}

func (a *adc) String() string                      { return "adc" }
func (a *adc) LimitSpeed(f physic.Frequency) error { return nil }
func (a *adc) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	return a, nil
}
func (a *adc) Duplex() conn.Duplex            { return conn.Full }
func (a *adc) TxPackets(p []spi.Packet) error { return errors.New("not supported") }
func (a *adc) Tx(w, r []byte) error {
	if a.err != nil {
		return a.err
	}
	a.cmds = append(a.cmds, w[0])
	vs := a.values[w[0]]
	v := vs[a.next[w[0]]%len(vs)]
	a.next[w[0]]++
	raw := v << 3
	r[0], r[1], r[2] = 0, byte(raw>>8), byte(raw)
	return nil
}

func TestPressure(t *testing.T) {
	c := qt.New(t)
	a := newADC(500, 3800, 1000, 2000)
	d, err := New(a, nil, &Opts{Rotation: 1, ZThreshold: 300})
	c.Assert(err, qt.IsNil)

	touched, err := d.Touched()
	c.Assert(err, qt.IsNil)
	// 500 + 4095 - 3800 = 795
	c.Assert(touched, qt.IsTrue)
	c.Assert(a.cmds, qt.DeepEquals, []byte{cmdZ1, cmdZ2})

	p, err := d.Point()
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, Point{X: 1000, Y: 2000, Z: 795})
}

func TestNotTouched(t *testing.T) {
	c := qt.New(t)
	a := newADC(0, 4095, 1000, 2000)
	d, err := New(a, nil, &Opts{Rotation: 1, ZThreshold: 300})
	c.Assert(err, qt.IsNil)

	touched, err := d.Touched()
	c.Assert(err, qt.IsNil)
	c.Assert(touched, qt.IsFalse)

	// below the threshold the position is not sampled
	a.cmds = nil
	p, err := d.Point()
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, Point{X: 0, Y: 0, Z: 0})
	c.Assert(a.cmds, qt.DeepEquals, []byte{cmdZ1, cmdZ2, cmdPowerDown})
}

func TestHalt(t *testing.T) {
	c := qt.New(t)
	a := newADC(0, 0, 0, 0)
	d, err := New(a, nil, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(d.Halt(), qt.IsNil)
	c.Assert(a.cmds, qt.DeepEquals, []byte{cmdPowerDown})
}

func TestBestTwoAverage(t *testing.T) {
	c := qt.New(t)
	a := newADC(500, 3800, 0, 0)
	a.values[cmdX] = []int{1000, 1004, 3000}
	// the first Y conversion is thrown away
	a.values[cmdY] = []int{4095, 10, 2000, 2010}
	d, err := New(a, nil, &Opts{Rotation: 1, ZThreshold: 300})
	c.Assert(err, qt.IsNil)

	p, err := d.Point()
	c.Assert(err, qt.IsNil)
	c.Assert(p.X, qt.Equals, 1002)
	c.Assert(p.Y, qt.Equals, 2005)
}

func TestChannels(t *testing.T) {
	c := qt.New(t)
	// 0xD1 measures X+, 0x91 measures Y+.
	a := &adc{
		values: map[byte][]int{0xB1: {500}, 0xC1: {3800}, 0xD1: {1000}, 0x91: {2000}, 0xD0: {0}},
		next:   map[byte]int{},
	}
	d, err := New(a, nil, &Opts{Rotation: 1, ZThreshold: 300})
	c.Assert(err, qt.IsNil)

	p, err := d.Point()
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, Point{X: 1000, Y: 2000, Z: 795})
	c.Assert(a.cmds, qt.DeepEquals, []byte{
		0xB1, 0xC1,
		0x91,
		0xD1, 0x91, 0xD1, 0x91, 0xD1, 0x91,
		0xD0,
	})
}

func TestDefaultThreshold(t *testing.T) {
	c := qt.New(t)
	// 350 + 4095 - 4045 = 400
	d, err := New(newADC(350, 4045, 0, 0), nil, nil)
	c.Assert(err, qt.IsNil)
	touched, err := d.Touched()
	c.Assert(err, qt.IsNil)
	c.Assert(touched, qt.IsTrue)

	// 399
	d, err = New(newADC(349, 4045, 0, 0), nil, nil)
	c.Assert(err, qt.IsNil)
	touched, err = d.Touched()
	c.Assert(err, qt.IsNil)
	c.Assert(touched, qt.IsFalse)
}

func TestRotation(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		r    int
		x, y int
	}{
		{0, 4095 - 2000, 1000},
		{1, 1000, 2000},
		{2, 2000, 4095 - 1000},
		{3, 4095 - 1000, 4095 - 2000},
	} {
		d, err := New(newADC(500, 3800, 1000, 2000), nil, &Opts{ZThreshold: 300})
		c.Assert(err, qt.IsNil)
		c.Assert(d.SetRotation(tc.r), qt.IsNil)
		p, err := d.Point()
		c.Assert(err, qt.IsNil)
		c.Assert(p.X, qt.Equals, tc.x, qt.Commentf("rotation %d", tc.r))
		c.Assert(p.Y, qt.Equals, tc.y, qt.Commentf("rotation %d", tc.r))
	}
}

func TestInvalidRotation(t *testing.T) {
	c := qt.New(t)
	_, err := New(newADC(0, 0, 0, 0), nil, &Opts{Rotation: 4})
	c.Assert(err, qt.IsNotNil)

	d, err := New(newADC(0, 0, 0, 0), nil, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(d.SetRotation(-1), qt.IsNotNil)
}

func TestIRQPenUp(t *testing.T) {
	c := qt.New(t)
	a := newADC(500, 3800, 1000, 2000)
	irq := &gpiotest.Pin{N: "IRQ", L: gpio.High}
	d, err := New(a, irq, nil)
	c.Assert(err, qt.IsNil)

	touched, err := d.Touched()
	c.Assert(err, qt.IsNil)
	c.Assert(touched, qt.IsFalse)
	c.Assert(a.cmds, qt.HasLen, 0)

	irq.L = gpio.Low
	touched, err = d.Touched()
	c.Assert(err, qt.IsNil)
	c.Assert(touched, qt.IsTrue)
}

func TestBusError(t *testing.T) {
	c := qt.New(t)
	a := newADC(0, 0, 0, 0)
	boom := errors.New("spi")
	a.err = boom
	d, err := New(a, nil, nil)
	c.Assert(err, qt.IsNil)

	_, err = d.Touched()
	c.Assert(errors.Is(err, boom), qt.IsTrue)
	_, err = d.Point()
	c.Assert(errors.Is(err, boom), qt.IsTrue)
}
