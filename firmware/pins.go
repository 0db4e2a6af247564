//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Status LED, lit while the node waits for the link
	PIN_LED = machine.LED

	// BME280 on the default I2C bus
	PIN_SDA       = machine.SDA_PIN
	PIN_SCL       = machine.SCL_PIN
	I2C_FREQUENCY = 400 * machine.KHz
	BME_I2C_ADDR  = 0x76

	// Serial console. The settings editor echoes nothing, so any terminal works.
	UART_BAUD_RATE = 115200

	// How long Wi-Fi association may take before the node reports a failure
	WIFI_CONNECT_TIMEOUT = 15 * time.Second
)
