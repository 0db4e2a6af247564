package uplink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/envnode/pkg/settings"
)

type writeReq struct {
	query url.Values
	auth  string
	body  string
}

type fakeInflux struct {
	mu          sync.Mutex
	pingStatus  int
	writeStatus int
	pings       int
	writes      []writeReq
}

func newFakeInflux(t *testing.T, pingStatus, writeStatus int) (*fakeInflux, *httptest.Server) {
	f := &fakeInflux{pingStatus: pingStatus, writeStatus: writeStatus}
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.pings++
		w.WriteHeader(f.pingStatus)
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writes = append(f.writes, writeReq{
			query: r.URL.Query(),
			auth:  r.Header.Get("Authorization"),
			body:  string(body),
		})
		if f.writeStatus >= 300 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.writeStatus)
			_, _ = io.WriteString(w, `{"code":"unauthorized","message":"unauthorized access"}`)
			return
		}
		w.WriteHeader(f.writeStatus)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeInflux) recorded() (pings int, writes []writeReq) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings, append([]writeReq(nil), f.writes...)
}

type publisher interface {
	Publish(ctx context.Context, t Target, r Record) error
}

var publishers = []struct {
	name string
	new  func(timeout time.Duration) publisher
}{
	{name: "client", new: func(timeout time.Duration) publisher { return New(timeout) }},
	{name: "poster", new: func(timeout time.Duration) publisher { return NewPoster(timeout) }},
}

func record() Record {
	return Record{
		Device:      "dev1",
		SSID:        "Net",
		IP:          "10.0.0.2",
		RSSI:        -61,
		Uptime:      12345 * time.Millisecond,
		Temperature: 21.5,
		Humidity:    45.5,
		Pressure:    1013.25,
	}
}

func TestTargetOf(t *testing.T) {
	cfg := settings.Default()
	cfg.URL = "http://influx:8086"
	cfg.Org = "home"
	assert.True(t, TargetOf(cfg).Legacy())

	cfg.Token = "tok"
	cfg.Bucket = "weather"
	target := TargetOf(cfg)
	assert.False(t, target.Legacy())
	assert.Equal(t, Target{URL: "http://influx:8086", Org: "home", Token: "tok", Bucket: "weather"}, target)
}

func TestEncode(t *testing.T) {
	line, err := Encode(record())
	require.NoError(t, err)

	assert.Equal(t,
		"bme280,IP=10.0.0.2,SSID=Net,device=dev1 rssi=-61i,millis=12345i,temperature=21.5,humidity=45.5,pressure=1013.25\n",
		string(line))
}

func TestEncode_EscapesTags(t *testing.T) {
	r := record()
	r.Location = "attic, north"
	line, err := Encode(r)
	require.NoError(t, err)
	assert.Contains(t, string(line), `location=attic\,\ north`)
}

func TestPublish_V2(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			f, srv := newFakeInflux(t, http.StatusNoContent, http.StatusNoContent)

			err := p.new(time.Second).Publish(context.Background(), Target{URL: srv.URL, Org: "home", Token: "tok", Bucket: "weather"}, record())
			require.NoError(t, err)

			pings, writes := f.recorded()
			require.Len(t, writes, 1)
			w := writes[0]
			assert.Equal(t, 1, pings)
			assert.Equal(t, "home", w.query.Get("org"))
			assert.Equal(t, "weather", w.query.Get("bucket"))
			assert.Equal(t, "ns", w.query.Get("precision"))
			assert.Equal(t, "Token tok", w.auth)

			assert.Regexp(t, `^bme280,`, w.body)
			for _, part := range []string{
				"device=dev1",
				"SSID=Net",
				"IP=10.0.0.2",
				"rssi=-61i",
				"millis=12345i",
				"temperature=21.5",
				"humidity=45.5",
				"pressure=1013.25",
			} {
				assert.Contains(t, w.body, part)
			}
			assert.NotContains(t, w.body, "location")
		})
	}
}

func TestPublish_Legacy(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			f, srv := newFakeInflux(t, http.StatusNoContent, http.StatusNoContent)

			r := record()
			r.Location = "attic"
			err := p.new(time.Second).Publish(context.Background(), Target{URL: srv.URL + "/", Org: "weather"}, r)
			require.NoError(t, err)

			_, writes := f.recorded()
			require.Len(t, writes, 1)
			w := writes[0]
			assert.Equal(t, "", w.query.Get("org"))
			assert.Equal(t, "weather", w.query.Get("bucket"))
			assert.Empty(t, w.auth)
			assert.Contains(t, w.body, "location=attic")
		})
	}
}

func TestPublish_PingFails(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			f, srv := newFakeInflux(t, http.StatusServiceUnavailable, http.StatusNoContent)

			err := p.new(time.Second).Publish(context.Background(), Target{URL: srv.URL, Org: "weather"}, record())
			assert.ErrorContains(t, err, "failed to validate InfluxDB connection")
			_, writes := f.recorded()
			assert.Empty(t, writes)
		})
	}
}

func TestPublish_WriteRejected(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			f, srv := newFakeInflux(t, http.StatusNoContent, http.StatusUnauthorized)

			err := p.new(time.Second).Publish(context.Background(), Target{URL: srv.URL, Org: "home", Token: "bad", Bucket: "weather"}, record())
			assert.ErrorContains(t, err, "failed to write to InfluxDB")
			_, writes := f.recorded()
			assert.Len(t, writes, 1)
		})
	}
}

func TestPublish_Unreachable(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			_, srv := newFakeInflux(t, http.StatusNoContent, http.StatusNoContent)
			addr := srv.URL
			srv.Close()

			err := p.new(time.Second).Publish(context.Background(), Target{URL: addr, Org: "weather"}, record())
			assert.Error(t, err)
		})
	}
}

func TestPublish_NoTarget(t *testing.T) {
	for _, p := range publishers {
		t.Run(p.name, func(t *testing.T) {
			err := p.new(0).Publish(context.Background(), Target{}, record())
			assert.ErrorIs(t, err, ErrNoTarget)
		})
	}
}
