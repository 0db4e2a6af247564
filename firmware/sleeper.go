//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/envnode/pkg/device"
)

// resetSleeper idles for the requested time and then resets the CPU, so every cycle
// starts from main just like a wake from deep sleep.
type resetSleeper struct {
	led machine.Pin
}

func (s resetSleeper) ConfigureWake() error {
	s.led.Low()
	return nil
}

func (s resetSleeper) DeepSleep(d time.Duration) {
	time.Sleep(d)
	machine.CPUReset()
}

var _ device.Sleeper = resetSleeper{}
