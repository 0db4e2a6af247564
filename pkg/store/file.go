//go:build !tinygo

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is an EEPROM image kept in a host file. Writes land in memory; Commit replaces
// the file atomically so a crash never leaves a half-written image.
type File struct {
	*Mem
	path string
}

// OpenFile loads the image at path. A missing file yields an erased image of size
// bytes; a shorter file is padded with erased bytes.
func OpenFile(path string, size int) (*File, error) {
	mem := NewMem(size)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read EEPROM image: %w", err)
	}
	copy(mem.data, data)

	return &File{Mem: mem, path: path}, nil
}

// Path returns the image file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Commit() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create EEPROM directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create EEPROM image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write EEPROM image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync EEPROM image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close EEPROM image: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace EEPROM image: %w", err)
	}

	return f.Mem.Commit()
}
