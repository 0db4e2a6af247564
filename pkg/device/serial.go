//go:build !tinygo

package device

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the console baud rate of the firmware.
const DefaultBaudRate = 115200

// Port describes an available serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// serialMode returns 8N1 at baudRate, or at DefaultBaudRate when baudRate is zero.
func serialMode(baudRate int) *serial.Mode {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens a serial port to use as the node console. The returned port
// satisfies console.Port.
func OpenSerial(name string, baudRate int) (serial.Port, error) {
	port, err := serial.Open(name, serialMode(baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}
