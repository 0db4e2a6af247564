package main

import (
	"context"
	"time"

	"github.com/itohio/envnode/pkg/device"
)

// hostSleeper stands in for deep sleep: it blocks for the requested time divided by
// scale, or until ctx is done.
type hostSleeper struct {
	ctx   context.Context
	scale float64
}

func newHostSleeper(ctx context.Context, scale float64) *hostSleeper {
	if scale <= 0 {
		scale = 1
	}
	return &hostSleeper{ctx: ctx, scale: scale}
}

func (s *hostSleeper) ConfigureWake() error {
	return nil
}

func (s *hostSleeper) DeepSleep(d time.Duration) {
	timer := time.NewTimer(time.Duration(float64(d) / s.scale))
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
	case <-timer.C:
	}
}

var _ device.Sleeper = (*hostSleeper)(nil)
