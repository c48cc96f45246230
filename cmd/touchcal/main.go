// Command touchcal calibrates an XPT2046 resistive touch panel against an
// ILI9341 display by collecting the top-left and bottom-right corners, prints
// the resulting mapping and then marks every touch on screen.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"touch-calibration-go/internal/calib"
	"touch-calibration-go/internal/canvas"
	"touch-calibration-go/internal/config"
	"touch-calibration-go/internal/ili9341"
	"touch-calibration-go/internal/status"
	"touch-calibration-go/internal/touch"
	"touch-calibration-go/internal/xpt2046"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "settings file path (JSON)")
	debug := flag.Bool("debug", false, "log every raw touch sample")
	oledBus := flag.String("oled", "", "I2C bus of an SSD1306 status display")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
		log.Infof("loaded config: %s", *configPath)
	}
	if *debug {
		cfg.Debug = true
	}
	if *oledBus != "" {
		cfg.OLEDBus = *oledBus
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.WithField("version", version).Info("touchcal starting")

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		log.Fatalf("no such pin: %s", cfg.DCPin)
	}
	var rst gpio.PinOut
	if cfg.ResetPin != "" {
		p := gpioreg.ByName(cfg.ResetPin)
		if p == nil {
			log.Fatalf("no such pin: %s", cfg.ResetPin)
		}
		rst = p
	}
	var irq gpio.PinIn
	if cfg.IRQPin != "" {
		p := gpioreg.ByName(cfg.IRQPin)
		if p == nil {
			log.Fatalf("no such pin: %s", cfg.IRQPin)
		}
		irq = p
	}

	displayPort, err := spireg.Open(cfg.DisplaySPI)
	if err != nil {
		log.Fatal(err)
	}
	defer displayPort.Close()

	panelOpts := ili9341.DefaultOpts
	panelOpts.Rotation = ili9341.Rotation(cfg.Rotation)
	panel, err := ili9341.New(displayPort, dc, rst, &panelOpts)
	if err != nil {
		log.Fatal(err)
	}
	defer panel.Halt()
	log.Infof("display: %s", panel)

	touchPort, err := spireg.Open(cfg.TouchSPI)
	if err != nil {
		log.Fatal(err)
	}
	defer touchPort.Close()

	touchOpts := xpt2046.DefaultOpts
	touchOpts.Rotation = cfg.TouchRotation
	tp, err := xpt2046.New(touchPort, irq, &touchOpts)
	if err != nil {
		log.Fatal(err)
	}
	defer tp.Halt()
	log.Infof("touch: %s", tp)

	var report io.Writer = os.Stdout
	if cfg.OLEDBus != "" {
		bus, err := i2creg.Open(cfg.OLEDBus)
		if err != nil {
			log.Fatal(err)
		}
		defer bus.Close()
		oled, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
		if err != nil {
			log.Fatal(err)
		}
		defer oled.Halt()
		mirror := status.New(oled)
		report = io.MultiWriter(os.Stdout, mirror)
		log.AddHook(mirror)
	}

	var fonts *canvas.Fonts
	if cfg.FontPath != "" {
		fonts, err = canvas.LoadFonts(cfg.FontPath)
	} else {
		fonts, err = canvas.NewFonts(nil)
	}
	if err != nil {
		log.Fatal(err)
	}
	screen := canvas.New(panel, fonts)
	b := screen.Bounds()
	if b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		log.Warnf("panel is %dx%d, configured %dx%d", b.Dx(), b.Dy(), cfg.Width, cfg.Height)
	}

	sampler := touch.NewSampler(touch.NewXPT2046(tp))
	sampler.PollDelay = cfg.PollDelay()
	collector := touch.NewCollector(sampler)
	collector.Quota = cfg.Samples
	collector.Window = cfg.Window
	collector.Threshold = cfg.ThresholdZCalibration
	collector.IdleDelay = cfg.IdleDelay()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := &calib.Controller{
		Screen:      screen,
		Collector:   collector,
		Clock:       touch.SystemClock{},
		Report:      report,
		Width:       cfg.Width,
		Height:      cfg.Height,
		SettleDelay: cfg.SettleDelay(),
	}
	mapping, err := ctrl.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("calibration interrupted")
			return
		}
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"x": mapping.X, "y": mapping.Y}).Info("calibration done")

	demo := &calib.Demo{
		Sampler:   sampler,
		Screen:    screen,
		Mapping:   mapping,
		Window:    cfg.Window,
		Threshold: cfg.ThresholdZ,
		DrawDelay: cfg.DrawDelay(),
	}
	if err := demo.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Info("shutting down")
}
