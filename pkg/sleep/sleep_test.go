package sleep

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/device/devicetest"
)

type captureLog struct{ lines []string }

func (l *captureLog) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name   string
		period time.Duration
		uptime time.Duration
		want   time.Duration
	}{
		{name: "fresh boot", period: 300 * time.Second, uptime: 0, want: 300 * time.Second},
		{name: "part of period used", period: 300 * time.Second, uptime: 7*time.Second + 250*time.Millisecond, want: 292*time.Second + 750*time.Millisecond},
		{name: "one microsecond left", period: time.Second, uptime: time.Second - time.Microsecond, want: time.Microsecond},
		{name: "exactly elapsed", period: 60 * time.Second, uptime: 60 * time.Second, want: 60 * time.Second},
		{name: "overrun", period: 60 * time.Second, uptime: 10 * time.Minute, want: 60 * time.Second},
		{name: "negative uptime", period: 60 * time.Second, uptime: -time.Second, want: 60 * time.Second},
		{name: "zero period", period: 0, uptime: time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remaining(tt.period, tt.uptime)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, time.Duration(0))
			assert.LessOrEqual(t, got, tt.period)
		})
	}
}

func TestSleepUntil(t *testing.T) {
	clock := devicetest.NewClock(12 * time.Second)
	sleeper := &device.MockSleeper{}
	log := &captureLog{}
	s := New(clock, sleeper, log)

	got := s.SleepUntil(300 * time.Second)

	assert.Equal(t, 288*time.Second, got)
	assert.Equal(t, []time.Duration{288 * time.Second}, sleeper.Sleeps())
	assert.Equal(t, 1, sleeper.WakeConfigured())
	assert.Equal(t, []string{"Going to sleep until 300.00"}, log.lines)
}

func TestSleepUntil_Overrun(t *testing.T) {
	clock := devicetest.NewClock(time.Hour)
	sleeper := &device.MockSleeper{}
	s := New(clock, sleeper, &captureLog{})

	assert.Equal(t, 300*time.Second, s.SleepUntil(300*time.Second))
}

type failingWake struct{ device.MockSleeper }

func (f *failingWake) ConfigureWake() error { return errors.New("no pin") }

func TestSleepUntil_WakeFailureStillSleeps(t *testing.T) {
	sleeper := &failingWake{}
	log := &captureLog{}
	s := New(devicetest.NewClock(0), sleeper, log)

	s.SleepUntil(time.Minute)

	assert.Equal(t, []time.Duration{time.Minute}, sleeper.Sleeps())
	assert.Contains(t, log.lines[0], "failed to configure wake source")
}
