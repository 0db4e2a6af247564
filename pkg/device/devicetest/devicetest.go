// Package devicetest provides deterministic collaborators for tests.
package devicetest

import (
	"errors"
	"sync"
	"time"

	"github.com/itohio/envnode/pkg/device"
)

// Clock is a manual clock: Sleep advances uptime instantly.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	slept  []time.Duration
	OnStep func(now time.Duration)
}

// NewClock starts at the given uptime.
func NewClock(uptime time.Duration) *Clock {
	return &Clock{now: uptime}
}

func (c *Clock) Uptime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.slept = append(c.slept, d)
	now, step := c.now, c.OnStep
	c.mu.Unlock()

	if step != nil {
		step(now)
	}
}

// Advance moves uptime forward without recording a sleep.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Slept returns every Sleep duration.
func (c *Clock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// Sensor replays scripted temperatures. Once the script is exhausted the last value
// repeats. Compensation is added to every temperature.
type Sensor struct {
	mu            sync.Mutex
	Temperatures  []float32
	Pressure      float32
	Humidity      float32
	BeginFailures int
	ReadErrors    int

	begins       int
	reads        int
	compensation float32
	sampling     device.Sampling
}

func (s *Sensor) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	if s.begins <= s.BeginFailures {
		return errors.New("no response")
	}
	return nil
}

func (s *Sensor) Configure(sm device.Sampling) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampling = sm
	return nil
}

func (s *Sensor) SetTemperatureCompensation(offsetC float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compensation = offsetC
}

func (s *Sensor) TemperatureCompensation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compensation
}

func (s *Sensor) ReadTemperature() (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.reads <= s.ReadErrors {
		return 0, errors.New("bus error")
	}
	if len(s.Temperatures) == 0 {
		return s.compensation, nil
	}
	i := s.reads - s.ReadErrors - 1
	if i >= len(s.Temperatures) {
		i = len(s.Temperatures) - 1
	}
	return s.Temperatures[i] + s.compensation, nil
}

func (s *Sensor) ReadPressure() (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pressure, nil
}

func (s *Sensor) ReadHumidity() (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Humidity, nil
}

// Begins returns how often Begin was called.
func (s *Sensor) Begins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

// Reads returns how often ReadTemperature was called.
func (s *Sensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Sampling returns the last configured sampling mode.
func (s *Sensor) Sampling() device.Sampling {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampling
}

var (
	_ device.Clock  = (*Clock)(nil)
	_ device.Sensor = (*Sensor)(nil)
)
