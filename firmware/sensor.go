//go:build tinygo

package main

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bme280"

	"github.com/itohio/envnode/pkg/device"
)

var errNoSensor = errors.New("BME280 not found")

// bmeSensor adapts the BME280 driver to device.Sensor. The driver reports integer
// milli-units; the compensation offset is applied here.
type bmeSensor struct {
	dev          bme280.Device
	sampling     device.Sampling
	compensation float32
}

func newBMESensor(bus drivers.I2C, addr uint16) *bmeSensor {
	dev := bme280.New(bus)
	dev.Address = addr
	return &bmeSensor{dev: dev, sampling: device.Precise}
}

func (s *bmeSensor) Begin() error {
	if !s.dev.Connected() {
		return errNoSensor
	}
	return s.Configure(s.sampling)
}

func (s *bmeSensor) Configure(cfg device.Sampling) error {
	ovs, err := oversampling(cfg.Oversampling)
	if err != nil {
		return err
	}
	s.dev.ConfigureWithSettings(bme280.Config{
		Pressure:    ovs,
		Temperature: ovs,
		Humidity:    ovs,
		Period:      standby(cfg.Standby),
		Mode:        bme280.ModeNormal,
		IIR:         filter(cfg.Filter),
	})
	s.sampling = cfg
	return nil
}

func (s *bmeSensor) SetTemperatureCompensation(offsetC float32) {
	s.compensation = offsetC
}

func (s *bmeSensor) TemperatureCompensation() float32 {
	return s.compensation
}

func (s *bmeSensor) ReadTemperature() (float32, error) {
	t, err := s.dev.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(t)/1000 + s.compensation, nil
}

func (s *bmeSensor) ReadPressure() (float32, error) {
	p, err := s.dev.ReadPressure()
	if err != nil {
		return 0, err
	}
	return float32(p) / 1000, nil
}

func (s *bmeSensor) ReadHumidity() (float32, error) {
	h, err := s.dev.ReadHumidity()
	if err != nil {
		return 0, err
	}
	return float32(h) / 100, nil
}

func oversampling(n int) (bme280.Oversampling, error) {
	switch n {
	case 0:
		return bme280.SamplingOff, nil
	case 1:
		return bme280.Sampling1X, nil
	case 2:
		return bme280.Sampling2X, nil
	case 4:
		return bme280.Sampling4X, nil
	case 8:
		return bme280.Sampling8X, nil
	case 16:
		return bme280.Sampling16X, nil
	}
	return 0, fmt.Errorf("unsupported oversampling %dx", n)
}

func filter(coeff int) bme280.FilterCoefficient {
	switch {
	case coeff >= 16:
		return bme280.Coeff16
	case coeff >= 8:
		return bme280.Coeff8
	case coeff >= 4:
		return bme280.Coeff4
	case coeff >= 2:
		return bme280.Coeff2
	}
	return bme280.Coeff0
}

// standby picks the longest driver period not above d.
func standby(d time.Duration) bme280.Period {
	switch {
	case d >= time.Second:
		return bme280.Period1000ms
	case d >= 500*time.Millisecond:
		return bme280.Period500ms
	case d >= 250*time.Millisecond:
		return bme280.Period250ms
	case d >= 125*time.Millisecond:
		return bme280.Period125ms
	case d >= 62500*time.Microsecond:
		return bme280.Period62_5ms
	case d >= 20*time.Millisecond:
		return bme280.Period20ms
	case d >= 10*time.Millisecond:
		return bme280.Period10ms
	}
	return bme280.Period0_5ms
}

var _ device.Sensor = (*bmeSensor)(nil)
