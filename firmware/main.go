//go:build tinygo

//go:generate tinygo flash -target=nano-rp2040

package main

import (
	"context"
	"log"
	"machine"
	"time"

	"tinygo.org/x/drivers/netlink/probe"

	"github.com/itohio/envnode/pkg/console"
	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/node"
	"github.com/itohio/envnode/pkg/store"
	"github.com/itohio/envnode/pkg/uplink"
)

var uart = machine.UART0

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LED.Low()

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	if err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       PIN_SDA,
		SCL:       PIN_SCL,
		Frequency: I2C_FREQUENCY,
	}); err != nil {
		halt("failed to configure I2C: %v", err)
	}

	clock := device.NewSystemClock()
	port := newUARTPort(uart)
	logger := console.NewLog(port, clock.Uptime)

	// machine.Flash starts past the program image
	flash, err := store.NewFlash(machine.Flash, store.Size)
	if err != nil {
		halt("failed to open settings flash: %v", err)
	}

	link, dev := probe.Probe()

	n := node.New(node.Deps{
		Console:   console.New(port),
		Log:       logger,
		Store:     store.New(flash, logger),
		Sensor:    newBMESensor(machine.I2C0, BME_I2C_ADDR),
		Network:   newStation(link, dev),
		Clock:     clock,
		Sleeper:   resetSleeper{led: PIN_LED},
		LED:       PIN_LED,
		Publisher: uplink.NewPoster(uplink.DefaultTimeout),
	})

	if err := n.Run(context.Background()); err != nil {
		halt("node stopped: %v", err)
	}
}

// halt reports a fatal error and resets after a pause long enough to read it.
func halt(format string, args ...any) {
	log.SetOutput(uart)
	log.Printf(format, args...)
	time.Sleep(10 * time.Second)
	machine.CPUReset()
}
