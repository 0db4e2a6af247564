package measure

import (
	"context"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/settings"
)

const (
	// Backoff is the wait between sensor retries.
	Backoff = time.Second
	// Settle lets the oversampling filter stabilise after configuration.
	Settle = 100 * time.Millisecond
	// recalibrateEpsilon is the offset change, in °C, worth pushing to the sensor.
	recalibrateEpsilon = 0.01
)

// Logger receives progress messages.
type Logger interface {
	Printf(format string, args ...any)
}

// InputServicer handles interactive input that arrived while waiting.
type InputServicer interface {
	ServiceInput(ctx context.Context) error
}

// Acquirer takes plausibility-gated readings from a sensor.
type Acquirer struct {
	sensor device.Sensor
	cfg    *settings.Config
	clock  device.Clock
	log    Logger
	input  InputServicer
}

// New creates an Acquirer. cfg is read on every reading, so edits made while
// retrying take effect on the next attempt. input may be nil.
func New(sensor device.Sensor, cfg *settings.Config, clock device.Clock, log Logger, input InputServicer) *Acquirer {
	return &Acquirer{
		sensor: sensor,
		cfg:    cfg,
		clock:  clock,
		log:    log,
		input:  input,
	}
}

// wait services pending input, then sleeps for d.
func (a *Acquirer) wait(ctx context.Context, d time.Duration) error {
	if a.input != nil {
		if err := a.input.ServiceInput(ctx); err != nil {
			return err
		}
	}
	a.clock.Sleep(d)
	return ctx.Err()
}

// Setup initialises the sensor, retrying forever until it responds, then applies the
// calibration offset and sampling mode.
func (a *Acquirer) Setup(ctx context.Context) error {
	for {
		err := a.sensor.Begin()
		if err == nil {
			break
		}
		a.log.Printf("ERROR: sensor.Begin() failed (%v); will retry", err)
		if err := a.wait(ctx, Backoff); err != nil {
			return err
		}
	}

	a.sensor.SetTemperatureCompensation(a.cfg.TempOffsetC)
	if err := a.sensor.Configure(device.Precise); err != nil {
		a.log.Printf("ERROR: sensor sampling setup failed: %v", err)
	}
	a.clock.Sleep(Settle)

	a.log.Printf("BME 280 configured")
	return nil
}

// Recalibrate pushes the configured offset to the sensor if it changed. It reports
// whether it did.
func (a *Acquirer) Recalibrate() bool {
	current := a.sensor.TemperatureCompensation()
	if math32.Abs(current-a.cfg.TempOffsetC) <= recalibrateEpsilon {
		return false
	}
	a.log.Printf("Changed temperature compensation to %.2f", a.cfg.TempOffsetC)
	a.sensor.SetTemperatureCompensation(a.cfg.TempOffsetC)
	return true
}

func (a *Acquirer) read() (raw, error) {
	var (
		r   raw
		err error
	)
	if r.temperatureC, err = a.sensor.ReadTemperature(); err != nil {
		return r, err
	}
	if r.pressurePa, err = a.sensor.ReadPressure(); err != nil {
		return r, err
	}
	if r.humidity, err = a.sensor.ReadHumidity(); err != nil {
		return r, err
	}
	r.uptime = a.clock.Uptime()
	return r, nil
}

// Acquire reads until the temperature is plausible. There is no retry limit.
// It only fails when ctx is done.
func (a *Acquirer) Acquire(ctx context.Context) (Measurement, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Measurement{}, err
		}

		r, err := a.read()
		if err != nil {
			a.log.Printf("ERROR: sensor read failed (%v); will retry", err)
		} else {
			m := convert(r, a.cfg.Fahrenheit)
			if plausible(m.Temperature) {
				a.log.Printf("measurement fetched")
				a.log.Printf("%5.1f%s; %.1fhPa; %.1f%%", m.Temperature, m.Unit(), m.Pressure, m.Humidity)
				return m, nil
			}
			a.log.Printf("ERROR: implausible temperature measurement (%f); will retry", m.Temperature)
		}

		if err := a.wait(ctx, Backoff); err != nil {
			return Measurement{}, err
		}
	}
}
