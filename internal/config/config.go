// Package config holds the runtime settings of touchcal: bus and pin names,
// panel geometry, thresholds and delays.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is loaded from JSON on top of Default. Delays are milliseconds.
type Config struct {
	DisplaySPI string `json:"display_spi"`
	TouchSPI   string `json:"touch_spi"`
	DCPin      string `json:"dc_pin"`
	ResetPin   string `json:"reset_pin"`
	IRQPin     string `json:"irq_pin"`
	OLEDBus    string `json:"oled_bus"`
	FontPath   string `json:"font_path"`

	Width         int `json:"width"`
	Height        int `json:"height"`
	Rotation      int `json:"rotation"`
	TouchRotation int `json:"touch_rotation"`

	ThresholdZ            int `json:"threshold_z"`
	ThresholdZCalibration int `json:"threshold_z_calibration"`
	Samples               int `json:"samples"`
	Window                int `json:"window"`

	PollDelayMS   int64 `json:"poll_delay_ms"`
	SettleDelayMS int64 `json:"settle_delay_ms"`
	DrawDelayMS   int64 `json:"draw_delay_ms"`
	IdleDelayMS   int64 `json:"idle_delay_ms"`

	Debug bool `json:"debug"`
}

// Default returns the settings for a 2.8" ILI9341/XPT2046 module on a
// Raspberry Pi.
func Default() Config {
	return Config{
		DisplaySPI:            "SPI0.0",
		TouchSPI:              "SPI1.0",
		DCPin:                 "GPIO25",
		ResetPin:              "GPIO24",
		Width:                 240,
		Height:                320,
		Rotation:              2,
		TouchRotation:         2,
		ThresholdZ:            500,
		ThresholdZCalibration: 150,
		Samples:               20,
		Window:                4,
		PollDelayMS:           10,
		SettleDelayMS:         2000,
		DrawDelayMS:           20,
	}
}

// Load reads the JSON file at path over the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and returns an error wrapping ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Rotation < 0 || c.Rotation > 3:
		return fmt.Errorf("%w: rotation %d", ErrInvalid, c.Rotation)
	case c.TouchRotation < 0 || c.TouchRotation > 3:
		return fmt.Errorf("%w: touch rotation %d", ErrInvalid, c.TouchRotation)
	case c.Samples < 1:
		return fmt.Errorf("%w: samples %d", ErrInvalid, c.Samples)
	case c.Window < 1:
		return fmt.Errorf("%w: window %d", ErrInvalid, c.Window)
	case c.PollDelayMS < 0 || c.SettleDelayMS < 0 || c.DrawDelayMS < 0 || c.IdleDelayMS < 0:
		return fmt.Errorf("%w: negative delay", ErrInvalid)
	case c.DisplaySPI == "" || c.TouchSPI == "" || c.DCPin == "":
		return fmt.Errorf("%w: display_spi, touch_spi and dc_pin are required", ErrInvalid)
	}
	return nil
}

func (c Config) PollDelay() time.Duration   { return time.Duration(c.PollDelayMS) * time.Millisecond }
func (c Config) SettleDelay() time.Duration { return time.Duration(c.SettleDelayMS) * time.Millisecond }
func (c Config) DrawDelay() time.Duration   { return time.Duration(c.DrawDelayMS) * time.Millisecond }
func (c Config) IdleDelay() time.Duration   { return time.Duration(c.IdleDelayMS) * time.Millisecond }
