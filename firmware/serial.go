//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/envnode/pkg/console"
)

// uartPort polls the UART receive buffer. Read returns what is buffered once anything
// arrives, or nothing once the read timeout passes.
type uartPort struct {
	uart    *machine.UART
	timeout time.Duration
}

func newUARTPort(uart *machine.UART) *uartPort {
	return &uartPort{uart: uart}
}

func (p *uartPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *uartPort) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	deadline := time.Now().Add(p.timeout)
	for p.uart.Buffered() == 0 {
		if p.timeout > 0 && !time.Now().Before(deadline) {
			return 0, nil
		}
		time.Sleep(time.Millisecond)
	}

	n := 0
	for n < len(b) && p.uart.Buffered() > 0 {
		c, err := p.uart.ReadByte()
		if err != nil {
			break
		}
		b[n] = c
		n++
	}
	return n, nil
}

func (p *uartPort) Write(b []byte) (int, error) {
	return p.uart.Write(b)
}

var _ console.Port = (*uartPort)(nil)
