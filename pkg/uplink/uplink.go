// Package uplink publishes measurements to InfluxDB, either a 2.x server addressed by
// organization, bucket and token, or a 1.x server addressed by database name through
// its 2.x compatibility endpoints.
package uplink

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	protocol "github.com/influxdata/line-protocol"

	"github.com/itohio/envnode/pkg/settings"
)

// Measurement is the InfluxDB measurement name of every record.
const Measurement = "bme280"

// DefaultTimeout bounds a whole Publish call.
const DefaultTimeout = 10 * time.Second

// ErrNoTarget is returned when the target has no URL.
var ErrNoTarget = errors.New("no upload target configured")

// Target addresses the database.
type Target struct {
	URL    string
	Org    string // 1.x: database name
	Token  string
	Bucket string
}

// TargetOf extracts the upload target from the device settings.
func TargetOf(cfg *settings.Config) Target {
	return Target{
		URL:    cfg.URL,
		Org:    cfg.Org,
		Token:  cfg.Token,
		Bucket: cfg.Bucket,
	}
}

// Legacy reports whether t addresses a 1.x database.
func (t Target) Legacy() bool {
	return t.Token == "" && t.Bucket == ""
}

// destination returns the org and bucket to write to. A 1.x server takes the database
// as the bucket and ignores the org.
func (t Target) destination() (org, bucket string) {
	if t.Legacy() {
		return "", t.Org
	}
	return t.Org, t.Bucket
}

// Record is one reading with the identity of the node that took it.
type Record struct {
	Device   string
	SSID     string
	IP       string
	Location string

	RSSI        int
	Uptime      time.Duration
	Temperature float32
	Humidity    float32
	Pressure    float32 // hPa
}

// Encode renders r as one line of line protocol without a timestamp; the server
// stamps it on arrival. Empty tags are left out.
func Encode(r Record) ([]byte, error) {
	m, err := protocol.New(Measurement, nil, nil, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to create metric: %w", err)
	}
	m.AddTag("device", r.Device)
	m.AddTag("SSID", r.SSID)
	m.AddTag("IP", r.IP)
	m.AddTag("location", r.Location)

	m.AddField("rssi", r.RSSI)
	m.AddField("millis", r.Uptime.Milliseconds())
	m.AddField("temperature", r.Temperature)
	m.AddField("humidity", r.Humidity)
	m.AddField("pressure", r.Pressure)

	var buf bytes.Buffer
	enc := protocol.NewEncoder(&buf)
	enc.FailOnFieldErr(true)
	if _, err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}
