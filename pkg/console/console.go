package console

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	// MaxLine bounds a line read; the excess up to the newline is discarded.
	MaxLine = 256
	// PollTimeout is the read timeout used to check for pending input.
	PollTimeout = 10 * time.Millisecond
	// readStep is the read timeout slice of a long line read, so cancellation and the
	// time budget are checked regularly.
	readStep = 100 * time.Millisecond
)

// ErrTimeout is returned when a line read runs out of its time budget.
var ErrTimeout = errors.New("console read timed out")

// Port is a bidirectional text stream with a read timeout. A Read that times out
// returns 0, nil. go.bug.st/serial ports satisfy it.
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
}

// Console reads user input from a Port. It holds back bytes consumed while checking
// for pending input so the next read sees them.
type Console struct {
	port    Port
	pending []byte
	buf     [64]byte
	now     func() time.Time
}

// New creates a Console on port.
func New(port Port) *Console {
	return &Console{
		port: port,
		now:  time.Now,
	}
}

// Write writes to the port directly.
func (c *Console) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

// fill reads whatever arrives within timeout into the pending buffer.
func (c *Console) fill(timeout time.Duration) error {
	if err := c.port.SetReadTimeout(timeout); err != nil {
		return err
	}
	n, err := c.port.Read(c.buf[:])
	c.pending = append(c.pending, c.buf[:n]...)
	if n > 0 {
		return nil
	}
	return err
}

// Pending reports whether input is waiting, without blocking for more than
// PollTimeout.
func (c *Console) Pending() bool {
	if len(c.pending) > 0 {
		return true
	}
	_ = c.fill(PollTimeout)
	return len(c.pending) > 0
}

// Next returns the next pending byte. ok is false when nothing arrived within
// PollTimeout.
func (c *Console) Next() (b byte, ok bool) {
	if !c.Pending() {
		return 0, false
	}
	b = c.pending[0]
	c.pending = c.pending[1:]
	return b, true
}

// DiscardLine drops pending input up to and including the next newline. It never
// waits for input that has not arrived.
func (c *Console) DiscardLine() {
	for {
		b, ok := c.Next()
		if !ok || b == '\n' {
			return
		}
	}
}

// ReadLine blocks until a full line arrives and returns it without the line
// terminator. Lines longer than MaxLine are cut to MaxLine bytes. A budget of zero
// waits forever; otherwise ErrTimeout is returned once budget has elapsed. A stream
// error ends the read; a partial line read before it is returned first.
func (c *Console) ReadLine(ctx context.Context, budget time.Duration) (string, error) {
	var (
		line     = make([]byte, 0, 64)
		deadline time.Time
	)
	if budget > 0 {
		deadline = c.now().Add(budget)
	}

	for {
		for len(c.pending) > 0 {
			b := c.pending[0]
			c.pending = c.pending[1:]
			switch {
			case b == '\n':
				return string(line), nil
			case b == '\r':
			case len(line) < MaxLine:
				line = append(line, b)
			}
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !deadline.IsZero() && !c.now().Before(deadline) {
			return "", ErrTimeout
		}

		if err := c.fill(readStep); err != nil {
			if len(line) > 0 && errors.Is(err, io.EOF) {
				return string(line), nil
			}
			return "", err
		}
	}
}
