package device

import "time"

// SystemClock measures uptime from its creation, which stands in for the last reset.
type SystemClock struct {
	boot time.Time
}

// NewSystemClock starts the uptime count now.
func NewSystemClock() *SystemClock {
	return &SystemClock{boot: time.Now()}
}

func (c *SystemClock) Uptime() time.Duration {
	return time.Since(c.boot)
}

func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
