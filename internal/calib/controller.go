package calib

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"touch-calibration-go/internal/touch"
)

var (
	Black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Red   = color.RGBA{0xff, 0x00, 0x00, 0xff}
)

const (
	DefaultSettleDelay = 2 * time.Second
	promptSize         = 4
	arrowSize          = 15
)

// Screen is the drawing surface the calibration renders on.
type Screen interface {
	FillScreen(c color.Color)
	SetTextColor(fg, bg color.Color)
	// DrawCenteredText draws s with its top edge at y, centred on x.
	DrawCenteredText(s string, x, y, size int)
	FillRect(x, y, w, h int, c color.Color)
	DrawLine(x0, y0, x1, y1 int, c color.Color)
	FillCircle(x, y, r int, c color.Color)
	// Flush pushes pending drawing to the panel.
	Flush() error
}

// CornerCollector gathers the raw reference position of one corner.
type CornerCollector interface {
	Collect(ctx context.Context, name string) (touch.Corner, error)
}

// Controller walks the operator through touching the top-left and
// bottom-right corners and derives the Mapping from them.
type Controller struct {
	Screen    Screen
	Collector CornerCollector
	Clock     touch.Clock
	// Report receives the human readable calibration data. Nil discards it.
	Report io.Writer

	Width, Height int
	// SettleDelay gives the operator time to lift the stylus between
	// corners.
	SettleDelay time.Duration
}

// Run performs the calibration once.
func (c *Controller) Run(ctx context.Context) (Mapping, error) {
	w, h := c.Width, c.Height

	c.prompt(-50, "Run Calibration")
	c.arrowTopLeft(arrowSize)
	c.text(0, "Touch in Top Left")
	c.text(50, "Corner and hold")
	if err := c.Screen.Flush(); err != nil {
		return Mapping{}, fmt.Errorf("calib: draw top left prompt: %w", err)
	}
	tl, err := c.Collector.Collect(ctx, "top left")
	if err != nil {
		return Mapping{}, err
	}
	if err := c.stopTouching(); err != nil {
		return Mapping{}, err
	}

	c.prompt(-100, "Run Calibration")
	c.arrowBottomRight(arrowSize)
	c.text(-50, "Touch in")
	c.text(0, "Bottom Right")
	c.text(50, "Corner and hold")
	if err := c.Screen.Flush(); err != nil {
		return Mapping{}, fmt.Errorf("calib: draw bottom right prompt: %w", err)
	}
	br, err := c.Collector.Collect(ctx, "bottom right")
	if err != nil {
		return Mapping{}, err
	}
	if err := c.stopTouching(); err != nil {
		return Mapping{}, err
	}

	m, err := NewMapping(tl, br, w, h)
	if err != nil {
		return Mapping{}, err
	}
	log.WithFields(log.Fields{"x": m.X.String(), "y": m.Y.String()}).Info("calib: mapping ready")
	if c.Report != nil {
		if err := WriteReport(c.Report, m); err != nil {
			log.Warnf("calib: report: %v", err)
		}
	}

	c.prompt(-50, "Calibration done")
	c.text(0, "Test Touch")
	if err := c.Screen.Flush(); err != nil {
		return Mapping{}, fmt.Errorf("calib: draw done prompt: %w", err)
	}
	return m, nil
}

func (c *Controller) stopTouching() error {
	c.prompt(-50, "Run Calibration")
	c.text(0, "STOP TOUCHING")
	if err := c.Screen.Flush(); err != nil {
		return fmt.Errorf("calib: draw stop prompt: %w", err)
	}
	if c.Clock != nil && c.SettleDelay > 0 {
		c.Clock.Sleep(c.SettleDelay)
	}
	return nil
}

// prompt clears the screen and writes the heading dy pixels from the
// vertical centre.
func (c *Controller) prompt(dy int, heading string) {
	c.Screen.FillScreen(Black)
	c.Screen.SetTextColor(Black, White)
	c.text(dy, heading)
}

func (c *Controller) text(dy int, s string) {
	c.Screen.DrawCenteredText(s, c.Width/2, c.Height/2+dy, promptSize)
}

func (c *Controller) arrowTopLeft(size int) {
	c.Screen.FillRect(0, 0, size+1, size+1, Red)
	c.Screen.DrawLine(0, 0, 0, size, White)
	c.Screen.DrawLine(0, 0, size, 0, White)
	c.Screen.DrawLine(0, 0, size, size, White)
}

func (c *Controller) arrowBottomRight(size int) {
	w, h := c.Width, c.Height
	c.Screen.FillRect(w-size-1, h-size-1, size+1, size+1, Red)
	c.Screen.DrawLine(w-size-1, h-size-1, w-1, h-1, White)
	c.Screen.DrawLine(w-1, h-1-size, w-1, h-1, White)
	c.Screen.DrawLine(w-1-size, h-1, w-1, h-1, White)
}
