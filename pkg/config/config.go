package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ENVNODE_CONSOLE_PORT.
const EnvPrefix = "ENVNODE_"

// Config represents the host runner configuration. Device settings are not part of
// it; they live in the EEPROM image.
type Config struct {
	Console ConsoleConfig `yaml:"console" envPrefix:"CONSOLE_"`
	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Cycle   CycleConfig   `yaml:"cycle" envPrefix:"CYCLE_"`
	Upload  UploadConfig  `yaml:"upload" envPrefix:"UPLOAD_"`
	Mock    MockConfig    `yaml:"mock" envPrefix:"MOCK_"`
}

// ConsoleConfig selects where the operator console is. An empty port means
// stdin/stdout.
type ConsoleConfig struct {
	Port     string `yaml:"port" env:"PORT"`
	BaudRate int    `yaml:"baud_rate" env:"BAUD_RATE"`
}

// StorageConfig locates the EEPROM image.
type StorageConfig struct {
	Path string `yaml:"path" env:"PATH"`
	Size int    `yaml:"size" env:"SIZE"` // bytes
}

// CycleConfig controls how the host simulates wake cycles.
type CycleConfig struct {
	Count     int     `yaml:"count" env:"COUNT"`           // 0 = forever
	TimeScale float64 `yaml:"time_scale" env:"TIME_SCALE"` // real deep sleep = requested / TimeScale
}

// UploadConfig bounds the InfluxDB write.
type UploadConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// AccessPointConfig is the simulated access point.
type AccessPointConfig struct {
	SSID string `yaml:"ssid" env:"SSID"` // empty accepts any credentials
	PSK  string `yaml:"psk" env:"PSK"`
}

// MockConfig contains simulated hardware configuration.
type MockConfig struct {
	Temperature   float64           `yaml:"temperature" env:"TEMPERATURE"` // °C
	Swing         float64           `yaml:"swing" env:"SWING"`             // °C amplitude of the hourly wave
	Humidity      float64           `yaml:"humidity" env:"HUMIDITY"`       // %
	Pressure      float64           `yaml:"pressure" env:"PRESSURE"`       // Pa
	NoiseLevel    float64           `yaml:"noise_level" env:"NOISE_LEVEL"`
	BeginFailures int               `yaml:"begin_failures" env:"BEGIN_FAILURES"`
	GlitchEvery   int               `yaml:"glitch_every" env:"GLITCH_EVERY"` // 0 = never
	ConnectDelay  time.Duration     `yaml:"connect_delay" env:"CONNECT_DELAY"`
	StoredSSID    string            `yaml:"stored_ssid" env:"STORED_SSID"` // radio's remembered association
	StoredPSK     string            `yaml:"stored_psk" env:"STORED_PSK"`
	AccessPoint   AccessPointConfig `yaml:"access_point" envPrefix:"AP_"`
	IP            string            `yaml:"ip" env:"IP"`
	RSSI          int               `yaml:"rssi" env:"RSSI"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			Port:     "", // stdin/stdout; e.g. "/dev/ttyUSB0" or "COM3" for a serial console
			BaudRate: 115200,
		},
		Storage: StorageConfig{
			Path: "eeprom.bin",
			Size: 4096,
		},
		Cycle: CycleConfig{
			Count:     0,
			TimeScale: 1,
		},
		Upload: UploadConfig{
			Timeout: 10 * time.Second,
		},
		Mock: MockConfig{
			Temperature:  21.5,
			Swing:        2,
			Humidity:     45,
			Pressure:     101325,
			NoiseLevel:   0.1,
			ConnectDelay: 2 * time.Second,
			IP:           "192.168.4.2",
			RSSI:         -61,
		},
	}
}

// Load loads configuration from a YAML file and applies environment overrides. If the
// file doesn't exist or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Console.BaudRate <= 0 {
		c.Console.BaudRate = def.Console.BaudRate
	}

	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Storage.Size <= 0 {
		c.Storage.Size = def.Storage.Size
	}

	if c.Cycle.TimeScale <= 0 {
		c.Cycle.TimeScale = def.Cycle.TimeScale
	}
	if c.Cycle.Count < 0 {
		c.Cycle.Count = def.Cycle.Count
	}

	if c.Upload.Timeout <= 0 {
		c.Upload.Timeout = def.Upload.Timeout
	}

	if c.Mock.Pressure == 0 {
		c.Mock.Pressure = def.Mock.Pressure
	}
	if c.Mock.IP == "" {
		c.Mock.IP = def.Mock.IP
	}
}
