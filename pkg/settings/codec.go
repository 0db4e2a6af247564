package settings

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// RecordSize is the length of the persisted record in bytes.
var RecordSize = recordSize()

func recordSize() int {
	n := 0
	for _, f := range fields {
		n += f.size
	}
	return n
}

// MarshalBinary encodes c as a fixed-schema record: fields in table order, text
// zero-padded to capacity, numbers little-endian.
func (c *Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	off := 0
	for _, f := range fields {
		b := buf[off : off+f.size]
		switch f.kind {
		case kindText:
			copy(b[:f.size-1], truncate(*f.text(c), f.size-1))
		case kindFloat:
			binary.LittleEndian.PutUint32(b, math.Float32bits(c.TempOffsetC))
		case kindPeriod:
			binary.LittleEndian.PutUint32(b, c.UpdatePeriodS)
		case kindBool:
			if c.Fahrenheit {
				b[0] = 1
			}
		}
		off += f.size
	}
	return buf, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary into c. Text fields are
// read up to their first NUL, and never past capacity-1 bytes.
func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("record is %d bytes, want %d", len(data), RecordSize)
	}

	var out Config
	off := 0
	for _, f := range fields {
		b := data[off : off+f.size]
		switch f.kind {
		case kindText:
			s := b[:f.size-1]
			if i := bytes.IndexByte(s, 0); i >= 0 {
				s = s[:i]
			}
			*f.text(&out) = string(s)
		case kindFloat:
			out.TempOffsetC = math.Float32frombits(binary.LittleEndian.Uint32(b))
		case kindPeriod:
			out.UpdatePeriodS = binary.LittleEndian.Uint32(b)
		case kindBool:
			out.Fahrenheit = b[0] != 0
		}
		off += f.size
	}

	*c = out
	return nil
}
