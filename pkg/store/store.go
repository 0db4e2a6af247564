package store

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/itohio/envnode/pkg/settings"
)

const (
	// Offset is where the record starts. Non-zero to keep wear away from byte 0.
	Offset = 33
	// MarkerSize is the length of the validation marker.
	MarkerSize = 16
)

// Marker follows the record on storage. It proves the record was written by Save in
// the current layout rather than left over from erased or foreign content.
var Marker = [MarkerSize]byte{'b', 'm', 'e', '_', '2', '8', '0', '_', '2', '.', '0', ' ', ' ', ' ', ' ', 0}

// Size is the number of storage bytes the store touches, from 0.
var Size = Offset + settings.RecordSize + MarkerSize

// EEPROM is byte-addressable non-volatile storage. Writes may be buffered until
// Commit.
type EEPROM interface {
	io.ReaderAt
	io.WriterAt
	Commit() error
}

// Logger receives progress messages.
type Logger interface {
	Printf(format string, args ...any)
}

// Store persists a settings.Config followed by Marker.
type Store struct {
	dev    EEPROM
	offset int64
	log    Logger
}

// New creates a Store on dev. A nil logger logs through the standard logger.
func New(dev EEPROM, logger Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		dev:    dev,
		offset: Offset,
		log:    logger,
	}
}

// Restore reads the record into out. It returns false, leaving out untouched, when the
// marker does not match or storage cannot be read.
func (s *Store) Restore(out *settings.Config) bool {
	// marker first: an unreadable or foreign record is never decoded
	marker := make([]byte, MarkerSize)
	if _, err := s.dev.ReadAt(marker, s.offset+int64(settings.RecordSize)); err != nil {
		s.log.Printf("Failed to read EEPROM: %v", err)
		return false
	}
	if !bytes.Equal(marker, Marker[:]) {
		s.log.Printf("No data found in EEPROM")
		return false
	}

	payload := make([]byte, settings.RecordSize)
	if _, err := s.dev.ReadAt(payload, s.offset); err != nil {
		s.log.Printf("Failed to read EEPROM: %v", err)
		return false
	}

	var cfg settings.Config
	if err := cfg.UnmarshalBinary(payload); err != nil {
		s.log.Printf("Failed to decode EEPROM record: %v", err)
		return false
	}
	*out = cfg

	s.log.Printf("Data fetched from EEPROM")
	return true
}

// Save writes the record, then the marker, then commits. A write interrupted before
// the marker lands leaves a record that Restore rejects.
func (s *Store) Save(cfg *settings.Config) error {
	payload, err := cfg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if _, err := s.dev.WriteAt(payload, s.offset); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if _, err := s.dev.WriteAt(Marker[:], s.offset+int64(len(payload))); err != nil {
		return fmt.Errorf("failed to write marker: %w", err)
	}
	if err := s.dev.Commit(); err != nil {
		return fmt.Errorf("failed to commit EEPROM: %w", err)
	}

	s.log.Printf("Saved data to EEPROM")
	return nil
}
