package console

import (
	"io"
	"sync"
	"time"
)

// StreamPort adapts a plain reader and writer, such as stdin and stdout, to Port. A
// background goroutine reads r so that Read can honour the timeout.
type StreamPort struct {
	w      io.Writer
	chunks chan []byte

	mu      sync.Mutex
	timeout time.Duration
	rest    []byte
	err     error
}

// NewStreamPort starts reading r in the background.
func NewStreamPort(r io.Reader, w io.Writer) *StreamPort {
	p := &StreamPort{
		w:      w,
		chunks: make(chan []byte, 16),
	}
	go p.pump(r)
	return p
}

func (p *StreamPort) pump(r io.Reader) {
	defer close(p.chunks)

	for {
		buf := make([]byte, 256)
		n, err := r.Read(buf)
		if n > 0 {
			p.chunks <- buf[:n]
		}
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			return
		}
	}
}

func (p *StreamPort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = t
	return nil
}

// Read returns buffered input, waiting up to the read timeout for more. It returns
// 0, nil on timeout and the reader's error once its input is exhausted.
func (p *StreamPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.rest) > 0 {
		n := copy(b, p.rest)
		p.rest = p.rest[n:]
		p.mu.Unlock()
		return n, nil
	}
	timeout := p.timeout
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case chunk, ok := <-p.chunks:
		if !ok {
			p.mu.Lock()
			defer p.mu.Unlock()
			return 0, p.err
		}
		n := copy(b, chunk)
		p.mu.Lock()
		p.rest = chunk[n:]
		p.mu.Unlock()
		return n, nil
	case <-timer.C:
		return 0, nil
	}
}

func (p *StreamPort) Write(b []byte) (int, error) {
	return p.w.Write(b)
}
