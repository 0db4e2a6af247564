package sleep

import (
	"time"

	"github.com/itohio/envnode/pkg/device"
)

// Logger receives progress messages.
type Logger interface {
	Printf(format string, args ...any)
}

// Scheduler puts the node to sleep until the next period boundary, measured from the
// last reset.
type Scheduler struct {
	clock   device.Clock
	sleeper device.Sleeper
	log     Logger
}

// New creates a Scheduler.
func New(clock device.Clock, sleeper device.Sleeper, log Logger) *Scheduler {
	return &Scheduler{
		clock:   clock,
		sleeper: sleeper,
		log:     log,
	}
}

// Remaining returns how long to sleep so the node wakes period after the last reset.
// Once uptime has reached period the whole period is returned, never a negative or
// wrapped duration.
func Remaining(period, uptime time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	if uptime < 0 {
		return period
	}
	periodUs := uint64(period.Microseconds())
	uptimeUs := uint64(uptime.Microseconds())
	if uptimeUs >= periodUs {
		return period
	}
	return time.Duration(periodUs-uptimeUs) * time.Microsecond
}

// SleepUntil arms the wake source and requests deep sleep for the rest of period. On
// hardware it does not return; elsewhere it returns the requested duration.
func (s *Scheduler) SleepUntil(period time.Duration) time.Duration {
	if err := s.sleeper.ConfigureWake(); err != nil {
		s.log.Printf("ERROR: failed to configure wake source: %v", err)
	}

	remaining := Remaining(period, s.clock.Uptime())
	s.log.Printf("Going to sleep until %.2f", period.Seconds())
	s.sleeper.DeepSleep(remaining)
	return remaining
}
