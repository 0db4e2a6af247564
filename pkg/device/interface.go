package device

import (
	"io"
	"time"
)

// Sampling selects the sensor's oversampling and filter setup.
type Sampling struct {
	Oversampling int           // per channel, 1..16
	Filter       int           // IIR filter coefficient, 0 = off
	Standby      time.Duration // between measurements in normal mode
}

// Precise is 16x oversampling with an 8x filter at 0.5 ms standby; about 12 cycles
// are needed for a stable reading.
var Precise = Sampling{Oversampling: 16, Filter: 8, Standby: 500 * time.Microsecond}

// Sensor is a temperature, pressure and humidity sensor.
type Sensor interface {
	// Begin probes and initialises the sensor. Callers retry until it succeeds.
	Begin() error
	Configure(s Sampling) error
	SetTemperatureCompensation(offsetC float32)
	TemperatureCompensation() float32
	ReadTemperature() (float32, error) // °C, compensation applied
	ReadPressure() (float32, error)    // Pa
	ReadHumidity() (float32, error)    // %
}

// Status is the state of the network link.
type Status int

const (
	StatusIdle Status = iota
	StatusNoSSID
	StatusConnecting
	StatusConnected
	StatusConnectFailed
	StatusWrongPassword
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusNoSSID:
		return "no ssid"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusConnectFailed:
		return "connect failed"
	case StatusWrongPassword:
		return "wrong password"
	case StatusDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Network is the Wi-Fi station. The node polls it; there are no callbacks.
type Network interface {
	Connected() bool
	Status() Status
	// Begin starts associating with ssid; it does not wait for the link.
	Begin(ssid, psk string) error
	SSID() string
	PSK() string
	Hostname() string
	SetHostname(name string) error
	LocalIP() string
	RSSI() int
	Diag(w io.Writer)
}

// Clock measures time since boot and blocks.
type Clock interface {
	Uptime() time.Duration
	Sleep(d time.Duration)
}

// Sleeper puts the device into deep sleep. On hardware DeepSleep does not return:
// the next thing to run after wake-up is main.
type Sleeper interface {
	ConfigureWake() error
	DeepSleep(d time.Duration)
}

// LED is a status indicator. machine.Pin satisfies it.
type LED interface {
	Set(on bool)
}

var _ Clock = (*SystemClock)(nil)
