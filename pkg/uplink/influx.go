//go:build !tinygo

package uplink

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Client writes records through the official InfluxDB client. A fresh InfluxDB client
// is built per call since the node publishes once per wake.
type Client struct {
	timeout time.Duration
	appName string
}

// New creates a Client. A non-positive timeout uses DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		timeout: timeout,
		appName: "envnode",
	}
}

func (c *Client) options() *influxdb2.Options {
	secs := uint(c.timeout / time.Second)
	if secs == 0 {
		secs = 1
	}
	return influxdb2.DefaultOptions().
		SetApplicationName(c.appName).
		SetHTTPRequestTimeout(secs)
}

// Publish validates the connection to t and writes r to it.
func (c *Client) Publish(ctx context.Context, t Target, r Record) error {
	if t.URL == "" {
		return ErrNoTarget
	}
	line, err := Encode(r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client := influxdb2.NewClientWithOptions(t.URL, t.Token, c.options())
	defer client.Close()

	if _, err := client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to validate InfluxDB connection: %w", err)
	}

	org, bucket := t.destination()
	w := client.WriteAPIBlocking(org, bucket)
	if err := w.WriteRecord(ctx, strings.TrimSuffix(string(line), "\n")); err != nil {
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	return nil
}
