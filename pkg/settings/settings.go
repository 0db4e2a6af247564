package settings

import (
	"fmt"
	"io"
	"time"
)

// DefaultUpdatePeriod is the update period of a freshly constructed Config, in seconds.
const DefaultUpdatePeriod = 300

// Config holds all persistent device settings.
//
// Text fields are bounded: each one fits its persisted capacity minus the trailing NUL.
// Mutate a Config through Apply so the bounds and the period invariant hold.
type Config struct {
	// Wi-Fi
	SSID     string
	PSK      string
	Hostname string

	// InfluxDB
	URL      string
	Org      string // InfluxDB 1: database name
	Token    string // InfluxDB 1: empty
	Bucket   string // InfluxDB 1: empty
	Location string // record tag

	// Calibration, always in Celsius regardless of Fahrenheit.
	TempOffsetC float32

	UpdatePeriodS uint32
	Fahrenheit    bool
}

// Default returns a zero configuration with the default update period.
func Default() *Config {
	return &Config{
		UpdatePeriodS: DefaultUpdatePeriod,
	}
}

// Legacy reports whether the upload target is addressed InfluxDB 1 style, by
// organization (database) only.
func (c *Config) Legacy() bool {
	return c.Token == "" && c.Bucket == ""
}

// MinimallyConfigured reports whether enough is set to connect and upload.
func (c *Config) MinimallyConfigured() bool {
	// all (v2) or nothing (v1) for token and bucket
	oneOrTheOther := (c.Token != "") == (c.Bucket != "")
	return c.SSID != "" &&
		c.PSK != "" &&
		c.Hostname != "" &&
		c.UpdatePeriodS > 0 &&
		c.URL != "" &&
		oneOrTheOther
}

// Period returns the update period as a duration.
func (c *Config) Period() time.Duration {
	return time.Duration(c.UpdatePeriodS) * time.Second
}

// Dump writes a human readable rendering of every field to w. Lines end in CRLF.
func (c *Config) Dump(w io.Writer) {
	yesNo := "no"
	if c.Fahrenheit {
		yesNo = "yes"
	}

	fmt.Fprintf(w, "\r\n\n"+
		"====================================================================\r\n"+
		"Settings:\r\n"+
		"Wifi:\r\n"+
		"  ssid            = %q\r\n"+
		"  psk             = %q\r\n"+
		"  hostname        = %q\r\n",
		c.SSID, c.PSK, c.Hostname)
	fmt.Fprintf(w, "Config\r\n"+
		"  update_period_s = %d\r\n"+
		"  fahrenheit      = %s\r\n"+
		"Calibration values\r\n"+
		"  temp_offset_C   = %.2f (NOTE: Celsius)\r\n",
		c.UpdatePeriodS, yesNo, c.TempOffsetC)
	fmt.Fprintf(w, "InfluxDB Settings\r\n"+
		"  url             = %q\r\n"+
		"  org             = %q (InfluxDB 1: name)\r\n"+
		"  token           = %q (InfluxDB 1: leave blank)\r\n"+
		"  bucket          = %q (InfluxDB 1: leave blank)\r\n"+
		"  location        = %q (Influx record tag)\r\n"+
		"\r\n\r\n",
		c.URL, c.Org, c.Token, c.Bucket, c.Location)
}
