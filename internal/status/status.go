// Package status mirrors text output onto a small monochrome display such
// as a 128x64 SSD1306.
package status

import (
	"image"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel is an io.Writer that shows the last lines written to it.
type Panel struct {
	mu      sync.Mutex
	dst     display.Drawer
	face    *basicfont.Face
	rows    int
	lines   []string
	partial string
}

// New returns a Panel drawing on dst.
func New(dst display.Drawer) *Panel {
	face := basicfont.Face7x13
	rows := dst.Bounds().Dy() / face.Height
	if rows < 1 {
		rows = 1
	}
	return &Panel{dst: dst, face: face, rows: rows}
}

// Write appends b and redraws. An unterminated line is shown as the last
// row until its newline arrives.
func (p *Panel) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.partial + string(b)
	parts := strings.Split(s, "\n")
	p.partial = parts[len(parts)-1]
	p.lines = append(p.lines, parts[:len(parts)-1]...)
	if len(p.lines) > p.rows {
		p.lines = p.lines[len(p.lines)-p.rows:]
	}
	if err := p.draw(); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Levels makes the Panel a logrus hook for informational messages and
// above. Debug output is too frequent for the bus.
func (p *Panel) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel}
}

// Fire shows the message of e without timestamp or fields.
func (p *Panel) Fire(e *log.Entry) error {
	_, err := p.Write([]byte(e.Message + "\n"))
	return err
}

// visible returns the rows currently on screen, top first.
func (p *Panel) visible() []string {
	out := append([]string(nil), p.lines...)
	if p.partial != "" {
		out = append(out, p.partial)
	}
	if len(out) > p.rows {
		out = out[len(out)-p.rows:]
	}
	return out
}

func (p *Panel) draw() error {
	bounds := p.dst.Bounds()
	img := image1bit.NewVerticalLSB(bounds)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(image1bit.On),
		Face: p.face,
	}
	for i, line := range p.visible() {
		d.Dot = fixed.P(bounds.Min.X, bounds.Min.Y+i*p.face.Height+p.face.Ascent)
		d.DrawString(line)
	}
	return p.dst.Draw(bounds, img, bounds.Min)
}
