package store

import (
	"fmt"
	"io"
)

// BlockDevice is erase-before-write flash, as exposed by TinyGo's machine.Flash.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
	WriteBlockSize() int64
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

// Flash emulates an EEPROM on a BlockDevice: the leading erase blocks are shadowed in
// RAM and Commit erases and rewrites them.
type Flash struct {
	dev    BlockDevice
	shadow []byte
	blocks int64
	dirty  bool
}

// NewFlash shadows enough erase blocks of dev to cover size bytes.
func NewFlash(dev BlockDevice, size int) (*Flash, error) {
	eb := dev.EraseBlockSize()
	if eb <= 0 {
		return nil, fmt.Errorf("invalid erase block size %d", eb)
	}
	blocks := (int64(size) + eb - 1) / eb
	if blocks*eb > dev.Size() {
		return nil, fmt.Errorf("flash of %d bytes cannot hold %d bytes", dev.Size(), size)
	}

	shadow := make([]byte, blocks*eb)
	if _, err := dev.ReadAt(shadow, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read flash: %w", err)
	}

	return &Flash{dev: dev, shadow: shadow, blocks: blocks}, nil
}

func (f *Flash) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(f.shadow)) {
		return 0, io.EOF
	}
	n := copy(p, f.shadow[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *Flash) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(f.shadow)) {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds %d byte flash window", len(p), off, len(f.shadow))
	}
	f.dirty = true
	return copy(f.shadow[off:], p), nil
}

// Commit erases the shadowed blocks and writes the shadow back. Nothing is erased when
// no write happened since the last commit.
func (f *Flash) Commit() error {
	if !f.dirty {
		return nil
	}
	if err := f.dev.EraseBlocks(0, f.blocks); err != nil {
		return fmt.Errorf("failed to erase flash: %w", err)
	}
	if _, err := f.dev.WriteAt(f.shadow, 0); err != nil {
		return fmt.Errorf("failed to program flash: %w", err)
	}
	f.dirty = false
	return nil
}
