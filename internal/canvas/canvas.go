// Package canvas keeps a full frame in memory, draws prompts and markers
// into it and pushes the changed part to a panel.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
)

// Canvas is an RGBA frame the size of the panel.
type Canvas struct {
	dst   display.Drawer
	img   *image.RGBA
	fonts *Fonts
	dirty image.Rectangle
	fg    color.Color
	bg    color.Color
}

// New returns a Canvas covering dst. fonts may be nil, in which case all
// text uses the 7x13 bitmap font.
func New(dst display.Drawer, fonts *Fonts) *Canvas {
	return &Canvas{
		dst:   dst,
		img:   image.NewRGBA(dst.Bounds()),
		fonts: fonts,
		fg:    color.White,
	}
}

// Image is the in-memory frame.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Bounds is the panel area.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

func (c *Canvas) FillScreen(col color.Color) {
	c.fill(c.img.Rect, col)
}

// SetTextColor sets the glyph colour and the box painted behind text. A nil
// bg leaves the background untouched.
func (c *Canvas) SetTextColor(fg, bg color.Color) {
	c.fg, c.bg = fg, bg
}

// DrawCenteredText draws s with its top edge at y and centred on x.
func (c *Canvas) DrawCenteredText(s string, x, y, size int) {
	face := c.fonts.Face(size)
	m := face.Metrics()
	width := font.MeasureString(face, s).Ceil()
	height := (m.Ascent + m.Descent).Ceil()
	left := x - width/2
	box := image.Rect(left, y, left+width, y+height)

	if c.bg != nil {
		c.fill(box, c.bg)
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.fg),
		Face: face,
		Dot:  fixed.P(left, y+m.Ascent.Ceil()),
	}
	d.DrawString(s)
	c.mark(box)
}

func (c *Canvas) FillRect(x, y, w, h int, col color.Color) {
	c.fill(image.Rect(x, y, x+w, y+h), col)
}

// DrawLine draws a one pixel Bresenham line, end points included.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col color.Color) {
	r := image.Rect(x0, y0, x1, y1)
	r.Max = r.Max.Add(image.Pt(1, 1))
	c.mark(r)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(c.img.Rect) {
			c.img.Set(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillCircle fills the pixels within r of (x, y).
func (c *Canvas) FillCircle(x, y, r int, col color.Color) {
	gc := draw2dimg.NewGraphicContext(c.img)
	gc.SetFillColor(col)
	gc.BeginPath()
	draw2dkit.Circle(gc, float64(x)+0.5, float64(y)+0.5, float64(r)+0.5)
	gc.Fill()
	c.mark(image.Rect(x-r-1, y-r-1, x+r+2, y+r+2))
}

// Flush draws the part of the frame changed since the last Flush.
func (c *Canvas) Flush() error {
	r := c.dirty.Intersect(c.img.Rect)
	c.dirty = image.Rectangle{}
	if r.Empty() {
		return nil
	}
	return c.dst.Draw(r, c.img, r.Min)
}

func (c *Canvas) fill(r image.Rectangle, col color.Color) {
	r = r.Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
	c.mark(r)
}

func (c *Canvas) mark(r image.Rectangle) {
	r = r.Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	c.dirty = c.dirty.Union(r)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
