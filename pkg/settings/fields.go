package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUnknownField is returned when a name matches no field.
	ErrUnknownField = errors.New("unrecognized value name")
	// ErrAmbiguousField is returned when a name matches more than one field.
	ErrAmbiguousField = errors.New("ambiguous value name")
	// ErrInvalidValue is returned when a value cannot be coerced; the field keeps its
	// previous value.
	ErrInvalidValue = errors.New("invalid value")
)

type kind uint8

const (
	kindText kind = iota
	kindFloat
	kindPeriod
	kindBool
)

// field describes one setting. The table below is shared by the editor, which matches
// names against it, and by the binary codec, which lays the record out in table order.
type field struct {
	name     string
	minMatch int
	kind     kind
	size     int // persisted bytes; for text this includes the NUL
	text     func(c *Config) *string
}

var fields = []field{
	{name: "ssid", minMatch: 2, kind: kindText, size: 33, text: func(c *Config) *string { return &c.SSID }},
	{name: "psk", minMatch: 1, kind: kindText, size: 65, text: func(c *Config) *string { return &c.PSK }},
	{name: "hostname", minMatch: 1, kind: kindText, size: 33, text: func(c *Config) *string { return &c.Hostname }},
	{name: "url", minMatch: 2, kind: kindText, size: 128, text: func(c *Config) *string { return &c.URL }},
	{name: "org", minMatch: 1, kind: kindText, size: 32, text: func(c *Config) *string { return &c.Org }},
	{name: "token", minMatch: 2, kind: kindText, size: 128, text: func(c *Config) *string { return &c.Token }},
	{name: "bucket", minMatch: 1, kind: kindText, size: 32, text: func(c *Config) *string { return &c.Bucket }},
	{name: "location", minMatch: 1, kind: kindText, size: 32, text: func(c *Config) *string { return &c.Location }},
	{name: "temp_offset_C", minMatch: 2, kind: kindFloat, size: 4},
	{name: "update_period_s", minMatch: 2, kind: kindPeriod, size: 4},
	{name: "fahrenheit", minMatch: 1, kind: kindBool, size: 1},
}

// Names returns the canonical field identifiers in table order.
func Names() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Capacity returns the maximum number of bytes a text field can hold, or 0 when name
// is not a canonical text field identifier.
func Capacity(name string) int {
	for _, f := range fields {
		if f.name == name && f.kind == kindText {
			return f.size - 1
		}
	}
	return 0
}

// matches reports whether input selects canonical. The input must be a true prefix
// of canonical at least minMatch long; an input longer than canonical never matches.
func matches(input, canonical string, minMatch int) bool {
	if len(input) < minMatch || len(input) > len(canonical) {
		return false
	}
	return canonical[:len(input)] == input
}

func lookup(name string) (*field, error) {
	var found *field
	for i := range fields {
		if !matches(name, fields[i].name, fields[i].minMatch) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w %q", ErrAmbiguousField, name)
		}
		found = &fields[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return found, nil
}

// Resolve returns the canonical identifier selected by name.
func Resolve(name string) (string, error) {
	f, err := lookup(name)
	if err != nil {
		return "", err
	}
	return f.name, nil
}

// Apply resolves name and assigns raw to the selected field.
func (c *Config) Apply(name, raw string) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}

	switch f.kind {
	case kindText:
		*f.text(c) = truncate(raw, f.size-1)
	case kindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w for %s: %q", ErrInvalidValue, f.name, raw)
		}
		c.TempOffsetC = float32(v)
	case kindPeriod:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || v <= 0 || v > int64(^uint32(0)) {
			return fmt.Errorf("%w for %s: %q", ErrInvalidValue, f.name, raw)
		}
		c.UpdatePeriodS = uint32(v)
	case kindBool:
		c.Fahrenheit = truthy(raw)
	}
	return nil
}

// ApplyField is Apply reduced to whether name selected a field at all. Invalid values
// still count as matched.
func (c *Config) ApplyField(name, raw string) bool {
	err := c.Apply(name, raw)
	return !errors.Is(err, ErrUnknownField) && !errors.Is(err, ErrAmbiguousField)
}

// truthy: first character Y or T (any case), or a non-zero integer.
func truthy(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r = unicode.ToUpper(r); r == 'Y' || r == 'T' {
		return true
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n != 0
}

// truncate cuts s at the first NUL and to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
