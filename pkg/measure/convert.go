package measure

import (
	"time"

	"github.com/chewxy/math32"
)

// Plausible temperature range, exclusive, in the reporting unit.
const (
	MaxPlausible float32 = 150
	MinPlausible float32 = -100
)

// Measurement is one accepted reading in reporting units.
type Measurement struct {
	Uptime      time.Duration // since boot, when the reading was taken
	Temperature float32       // °C, or °F when Fahrenheit
	Humidity    float32       // %
	Pressure    float32       // hPa
	Fahrenheit  bool
}

// Unit returns the temperature unit symbol.
func (m Measurement) Unit() string {
	if m.Fahrenheit {
		return "F"
	}
	return "C"
}

// raw is a reading as the sensor reports it.
type raw struct {
	temperatureC float32
	pressurePa   float32
	humidity     float32
	uptime       time.Duration
}

// convert applies the unit conversion and pressure scaling.
func convert(r raw, fahrenheit bool) Measurement {
	t := r.temperatureC
	if fahrenheit {
		t = celsiusToFahrenheit(t)
	}
	return Measurement{
		Uptime:      r.uptime,
		Temperature: t,
		Humidity:    r.humidity,
		Pressure:    paToHPa(r.pressurePa),
		Fahrenheit:  fahrenheit,
	}
}

// celsiusToFahrenheit: F = 32 + C/5*9
func celsiusToFahrenheit(c float32) float32 {
	return 32 + (c/5)*9
}

func paToHPa(pa float32) float32 {
	return pa / 100
}

// plausible reports whether t lies strictly inside the plausible range. NaN and
// infinities are never plausible.
func plausible(t float32) bool {
	if math32.IsNaN(t) || math32.IsInf(t, 0) {
		return false
	}
	return t < MaxPlausible && t > MinPlausible
}
