package touch

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultQuota     = 20
	DefaultWindow    = 4
	DefaultThreshold = 150
)

// State of a corner collection.
type State int

const (
	Collecting State = iota
	Done
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Accumulator gathers accepted averages until its quota is reached.
type Accumulator struct {
	quota      int
	threshold  int
	state      State
	accepted   int
	rejected   int
	sumX, sumY int
}

// NewAccumulator returns an Accumulator that accepts averages whose Z is
// strictly greater than threshold, until quota of them have been accepted.
func NewAccumulator(quota, threshold int) *Accumulator {
	if quota < 1 {
		quota = 1
	}
	return &Accumulator{quota: quota, threshold: threshold}
}

// Offer feeds one average. It reports whether the average was accepted.
// Offers after the quota is reached are ignored.
func (a *Accumulator) Offer(p Averaged) bool {
	if a.state == Done {
		return false
	}
	if p.Z <= a.threshold {
		a.rejected++
		return false
	}
	a.sumX += p.X
	a.sumY += p.Y
	a.accepted++
	if a.accepted == a.quota {
		a.state = Done
	}
	return true
}

func (a *Accumulator) State() State  { return a.state }
func (a *Accumulator) Accepted() int { return a.accepted }
func (a *Accumulator) Rejected() int { return a.rejected }

// Corner returns the truncated mean of the accepted averages. It is only
// meaningful once the state is Done.
func (a *Accumulator) Corner() Corner {
	if a.accepted == 0 {
		return Corner{}
	}
	return Corner{X: a.sumX / a.accepted, Y: a.sumY / a.accepted}
}

// Collector blocks until enough firm touches have been seen for one corner.
type Collector struct {
	Sampler   *Sampler
	Quota     int
	Window    int
	Threshold int
	// IdleDelay is slept between polls that find the panel untouched. Zero
	// keeps polling without pause.
	IdleDelay time.Duration
}

// NewCollector returns a Collector with the default quota, window and
// pressure threshold.
func NewCollector(s *Sampler) *Collector {
	return &Collector{
		Sampler:   s,
		Quota:     DefaultQuota,
		Window:    DefaultWindow,
		Threshold: DefaultThreshold,
	}
}

// Collect polls until Quota averages with pressure above Threshold have been
// accepted and returns their mean. Light touches never count. There is no
// timeout; only ctx ends the wait early.
func (c *Collector) Collect(ctx context.Context, name string) (Corner, error) {
	acc := NewAccumulator(c.Quota, c.Threshold)
	logger := log.WithField("corner", name)
	logger.Infof("=== Collecting data for the %s corner ===", name)

	for acc.State() == Collecting {
		if err := ctx.Err(); err != nil {
			return Corner{}, err
		}
		touched, err := c.Sampler.Sensor.Touched()
		if err != nil {
			return Corner{}, fmt.Errorf("touch: poll %s corner: %w", name, err)
		}
		if !touched {
			if c.IdleDelay > 0 && c.Sampler.Clock != nil {
				c.Sampler.Clock.Sleep(c.IdleDelay)
			}
			continue
		}
		p, err := c.Sampler.Average(c.Window)
		if err != nil {
			return Corner{}, err
		}
		if acc.Offer(p) {
			logger.Infof("Nr sample: %2d | %s", acc.Accepted()-1, p)
		}
	}

	corner := acc.Corner()
	logger.WithFields(log.Fields{
		"x":        corner.X,
		"y":        corner.Y,
		"rejected": acc.Rejected(),
	}).Info("touch: corner collected")
	return corner, nil
}
