// Package touchtest provides scripted touch sensors and a recording clock
// for tests.
package touchtest

import (
	"errors"
	"sync"
	"time"

	"touch-calibration-go/internal/touch"
)

// ErrExhausted is returned by Sensor.Read once the script is used up.
var ErrExhausted = errors.New("touchtest: no more samples")

// Sensor replays a fixed list of samples. It reports touched while samples
// remain, after first reporting Untouched false polls.
type Sensor struct {
	sync.Mutex
	Samples   []touch.Sample
	Untouched int
	// Err, when set, is returned by both methods.
	Err error

	Reads   int
	Touches int
}

// Press returns window+1 copies of s, which is what one Sampler.Average
// call with that window consumes.
func Press(s touch.Sample, window int) []touch.Sample {
	out := make([]touch.Sample, window+1)
	for i := range out {
		out[i] = s
	}
	return out
}

// Presses concatenates Press(s, window) for every s.
func Presses(window int, samples ...touch.Sample) []touch.Sample {
	var out []touch.Sample
	for _, s := range samples {
		out = append(out, Press(s, window)...)
	}
	return out
}

func (s *Sensor) Touched() (bool, error) {
	s.Lock()
	defer s.Unlock()
	s.Touches++
	if s.Err != nil {
		return false, s.Err
	}
	if s.Untouched > 0 {
		s.Untouched--
		return false, nil
	}
	return len(s.Samples) > 0, nil
}

func (s *Sensor) Read() (touch.Sample, error) {
	s.Lock()
	defer s.Unlock()
	if s.Err != nil {
		return touch.Sample{}, s.Err
	}
	if len(s.Samples) == 0 {
		return touch.Sample{}, ErrExhausted
	}
	p := s.Samples[0]
	s.Samples = s.Samples[1:]
	s.Reads++
	return p, nil
}

// Remaining returns the number of unread samples.
func (s *Sensor) Remaining() int {
	s.Lock()
	defer s.Unlock()
	return len(s.Samples)
}

// Clock records sleeps instead of sleeping.
type Clock struct {
	sync.Mutex
	Sleeps []time.Duration
}

func (c *Clock) Sleep(d time.Duration) {
	c.Lock()
	c.Sleeps = append(c.Sleeps, d)
	c.Unlock()
}

// Total returns the sum of all recorded sleeps.
func (c *Clock) Total() time.Duration {
	c.Lock()
	defer c.Unlock()
	var t time.Duration
	for _, d := range c.Sleeps {
		t += d
	}
	return t
}
