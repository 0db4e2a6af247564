// Package consoletest provides a scripted console.Port for tests.
package consoletest

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"
)

// Port replays a fixed input script and records everything written. Once the script
// is exhausted reads return io.EOF.
type Port struct {
	mu       sync.Mutex
	in       []byte
	out      bytes.Buffer
	timeouts []time.Duration
}

// New returns a Port that will deliver input.
func New(input string) *Port {
	return &Port{in: []byte(input)}
}

// Feed appends more input.
func (p *Port) Feed(input string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in = append(p.in, input...)
}

func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.in) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.in)
	p.in = p.in[n:]
	return n, nil
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *Port) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts = append(p.timeouts, t)
	return nil
}

// Output returns everything written so far.
func (p *Port) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

// Count returns how often s occurs in the output.
func (p *Port) Count(s string) int {
	return strings.Count(p.Output(), s)
}

// Remaining returns the unread input.
func (p *Port) Remaining() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.in)
}
