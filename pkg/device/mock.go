//go:build !tinygo

package device

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/envnode/pkg/config"
)

// MockSensor simulates a BME280 sitting in a slowly changing environment.
type MockSensor struct {
	cfg *config.MockConfig

	mu           sync.Mutex
	start        time.Time
	begins       int
	reads        int
	compensation float32
	sampling     Sampling
	begun        bool
}

// NewMockSensor creates a simulated sensor. A nil cfg uses config.Default().Mock.
func NewMockSensor(cfg *config.MockConfig) *MockSensor {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	return &MockSensor{
		cfg:   cfg,
		start: time.Now(),
	}
}

// Begin fails the first BeginFailures times.
func (m *MockSensor) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.begins++
	if m.begins <= m.cfg.BeginFailures {
		return errors.New("sensor not responding")
	}
	m.begun = true
	return nil
}

func (m *MockSensor) Configure(s Sampling) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.begun {
		return errors.New("sensor not initialised")
	}
	m.sampling = s
	return nil
}

func (m *MockSensor) SetTemperatureCompensation(offsetC float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensation = offsetC
}

func (m *MockSensor) TemperatureCompensation() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compensation
}

// ReadTemperature follows a sine around the configured temperature. Every
// GlitchEvery-th read returns an implausible value.
func (m *MockSensor) ReadTemperature() (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.begun {
		return 0, errors.New("sensor not initialised")
	}
	m.reads++
	if m.cfg.GlitchEvery > 0 && m.reads%m.cfg.GlitchEvery == 0 {
		return 180, nil
	}
	return float32(m.cfg.Temperature) + m.wave(float32(m.cfg.Swing)) + m.compensation, nil
}

func (m *MockSensor) ReadPressure() (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.begun {
		return 0, errors.New("sensor not initialised")
	}
	return float32(m.cfg.Pressure) + m.wave(float32(m.cfg.NoiseLevel)*100), nil
}

func (m *MockSensor) ReadHumidity() (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.begun {
		return 0, errors.New("sensor not initialised")
	}
	h := float32(m.cfg.Humidity) + m.wave(float32(m.cfg.NoiseLevel)*10)
	return math32.Max(0, math32.Min(100, h)), nil
}

// wave is a slow sine of the given amplitude; one period per hour.
func (m *MockSensor) wave(amplitude float32) float32 {
	hours := float32(time.Since(m.start).Hours())
	return amplitude * math32.Sin(2*math32.Pi*hours)
}

// MockNetwork simulates a Wi-Fi station. Association succeeds ConnectDelay after
// Begin when the credentials match the configured access point, or always when the
// access point SSID is empty.
type MockNetwork struct {
	cfg *config.MockConfig

	mu       sync.Mutex
	ssid     string
	psk      string
	hostname string
	beganAt  time.Time
	begins   int
}

// NewMockNetwork creates a station that remembers the configured StoredSSID/PSK, like
// a radio that kept its last association across resets.
func NewMockNetwork(cfg *config.MockConfig) *MockNetwork {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	n := &MockNetwork{
		cfg:  cfg,
		ssid: cfg.StoredSSID,
		psk:  cfg.StoredPSK,
	}
	if n.ssid != "" {
		n.beganAt = time.Now()
	}
	return n
}

func (n *MockNetwork) credentialsOK() bool {
	ap := n.cfg.AccessPoint
	return ap.SSID == "" || (ap.SSID == n.ssid && ap.PSK == n.psk)
}

func (n *MockNetwork) status() Status {
	switch {
	case n.ssid == "":
		return StatusIdle
	case n.cfg.AccessPoint.SSID != "" && n.cfg.AccessPoint.SSID != n.ssid:
		return StatusNoSSID
	case !n.credentialsOK():
		return StatusWrongPassword
	case time.Since(n.beganAt) < n.cfg.ConnectDelay:
		return StatusConnecting
	}
	return StatusConnected
}

func (n *MockNetwork) Connected() bool {
	return n.Status() == StatusConnected
}

func (n *MockNetwork) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status()
}

func (n *MockNetwork) Begin(ssid, psk string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ssid == "" {
		return errors.New("empty ssid")
	}
	n.ssid = ssid
	n.psk = psk
	n.beganAt = time.Now()
	n.begins++
	return nil
}

// Begins returns how many associations were started.
func (n *MockNetwork) Begins() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.begins
}

func (n *MockNetwork) SSID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ssid
}

func (n *MockNetwork) PSK() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.psk
}

func (n *MockNetwork) Hostname() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hostname
}

func (n *MockNetwork) SetHostname(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hostname = name
	return nil
}

func (n *MockNetwork) LocalIP() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status() != StatusConnected {
		return "0.0.0.0"
	}
	return n.cfg.IP
}

func (n *MockNetwork) RSSI() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status() != StatusConnected {
		return 0
	}
	return n.cfg.RSSI
}

func (n *MockNetwork) Diag(w io.Writer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(w, "Mode: STA\r\nSSID (%d): %s\r\nStatus: %s\r\nHostname: %s\r\n",
		len(n.ssid), n.ssid, n.status(), n.hostname)
}

// MockSleeper records sleep requests instead of powering down.
type MockSleeper struct {
	mu     sync.Mutex
	wakes  int
	sleeps []time.Duration
}

func (s *MockSleeper) ConfigureWake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wakes++
	return nil
}

func (s *MockSleeper) DeepSleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
}

// Sleeps returns every requested sleep duration.
func (s *MockSleeper) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

// WakeConfigured reports how often the wake source was armed.
func (s *MockSleeper) WakeConfigured() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wakes
}

var (
	_ Sensor  = (*MockSensor)(nil)
	_ Network = (*MockNetwork)(nil)
	_ Sleeper = (*MockSleeper)(nil)
)
