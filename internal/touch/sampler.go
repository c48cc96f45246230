package touch

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultPollDelay is the pause after each read inside an averaging window.
const DefaultPollDelay = 10 * time.Millisecond

// Sampler averages short bursts of raw readings.
type Sampler struct {
	Sensor    Sensor
	Clock     Clock
	PollDelay time.Duration
}

// NewSampler returns a Sampler using the system clock and DefaultPollDelay.
func NewSampler(s Sensor) *Sampler {
	return &Sampler{Sensor: s, Clock: SystemClock{}, PollDelay: DefaultPollDelay}
}

// Average throws away one reading, which the controller tends to report
// stale, then reads n samples and averages X and Y with truncating division.
// Z comes from the first of the n samples.
func (s *Sampler) Average(n int) (Averaged, error) {
	if n < 1 {
		return Averaged{}, ErrWindow
	}
	if _, err := s.Sensor.Read(); err != nil {
		return Averaged{}, fmt.Errorf("touch: read sample: %w", err)
	}

	var sumX, sumY, z int
	for i := 0; i < n; i++ {
		p, err := s.Sensor.Read()
		if err != nil {
			return Averaged{}, fmt.Errorf("touch: read sample: %w", err)
		}
		sumX += p.X
		sumY += p.Y
		if i == 0 {
			z = p.Z
		}
		log.WithFields(log.Fields{"n": i, "x": p.X, "y": p.Y, "z": p.Z}).Debug("touch: poll")
		s.sleep()
	}

	avg := Averaged{X: sumX / n, Y: sumY / n, Z: z}
	log.WithFields(log.Fields{"sumX": sumX, "sumY": sumY, "x": avg.X, "y": avg.Y, "z": avg.Z}).Debug("touch: average")
	return avg, nil
}

func (s *Sampler) sleep() {
	if s.Clock == nil || s.PollDelay <= 0 {
		return
	}
	s.Clock.Sleep(s.PollDelay)
}
