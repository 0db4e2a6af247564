package store

import (
	"fmt"
	"io"
)

// Erased is the value of a never-written storage byte.
const Erased = 0xFF

// Mem is an EEPROM held in RAM. Commit is a no-op apart from counting.
type Mem struct {
	data    []byte
	Commits int
}

// NewMem returns an erased Mem of the given size.
func NewMem(size int) *Mem {
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	return &Mem{data: data}
}

// Bytes exposes the underlying storage.
func (m *Mem) Bytes() []byte {
	return m.data
}

func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *Mem) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds %d byte EEPROM", len(p), off, len(m.data))
	}
	return copy(m.data[off:], p), nil
}

func (m *Mem) Commit() error {
	m.Commits++
	return nil
}
