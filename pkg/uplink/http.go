package uplink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Poster writes records with bare net/http requests against the same endpoints the
// official client uses. The firmware publishes through it.
type Poster struct {
	client  *http.Client
	timeout time.Duration
}

// NewPoster creates a Poster. A non-positive timeout uses DefaultTimeout.
func NewPoster(timeout time.Duration) *Poster {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poster{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func endpoint(t Target, path string) string {
	return strings.TrimSuffix(t.URL, "/") + path
}

func (p *Poster) do(req *http.Request, t Target) error {
	if t.Token != "" {
		req.Header.Set("Authorization", "Token "+t.Token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Publish validates the connection to t and writes r to it.
func (p *Poster) Publish(ctx context.Context, t Target, r Record) error {
	if t.URL == "" {
		return ErrNoTarget
	}
	line, err := Encode(r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ping, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(t, "/ping"), nil)
	if err != nil {
		return fmt.Errorf("failed to validate InfluxDB connection: %w", err)
	}
	if err := p.do(ping, t); err != nil {
		return fmt.Errorf("failed to validate InfluxDB connection: %w", err)
	}

	org, bucket := t.destination()
	q := url.Values{}
	q.Set("org", org)
	q.Set("bucket", bucket)
	q.Set("precision", "ns")

	write, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(t, "/api/v2/write?"+q.Encode()), bytes.NewReader(line))
	if err != nil {
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	write.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if err := p.do(write, t); err != nil {
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	return nil
}
