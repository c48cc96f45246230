package touch

import "touch-calibration-go/internal/xpt2046"

type xptSensor struct {
	dev *xpt2046.Dev
}

// NewXPT2046 exposes an XPT2046 controller as a Sensor.
func NewXPT2046(dev *xpt2046.Dev) Sensor {
	return &xptSensor{dev: dev}
}

func (s *xptSensor) Touched() (bool, error) {
	return s.dev.Touched()
}

func (s *xptSensor) Read() (Sample, error) {
	p, err := s.dev.Point()
	if err != nil {
		return Sample{}, err
	}
	return Sample{X: p.X, Y: p.Y, Z: p.Z}, nil
}
