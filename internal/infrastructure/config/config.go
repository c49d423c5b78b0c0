package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the EOD chart core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Chart     ChartConfig     `yaml:"chart"`
}

// SiteConfig identifies the deployment (campus) this instance serves.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TelemetryConfig describes the remote chart-data API the raw series are read from.
type TelemetryConfig struct {
	// ServerURL is the base URL; requests go to
	// {server_url}/api/chart-data/building/{id}/ticks/{ticks+1}.
	ServerURL string `yaml:"server_url"`

	// Ticks is the number of 15-minute samples charted (one week = 672).
	// One extra sample is always requested to anchor the first demand value.
	Ticks int `yaml:"ticks"`

	// Timeout bounds a single request to the API (seconds).
	Timeout int `yaml:"timeout"`
}

// ChartConfig contains chart assembly and caching settings.
type ChartConfig struct {
	// ConfigTTL is how long an assembled chart configuration stays valid (minutes).
	ConfigTTL int `yaml:"config_ttl"`

	// Poll controls how long temperature reads wait for a pending fetch.
	Poll PollConfig `yaml:"poll"`

	// Axes overrides the built-in y-axis definitions when non-empty.
	Axes []AxisConfig `yaml:"axes"`
}

// PollConfig contains temperature poll settings.
type PollConfig struct {
	Attempts int `yaml:"attempts"`
	Interval int `yaml:"interval"` // seconds
}

// AxisConfig describes one chart y-axis.
type AxisConfig struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Position string `yaml:"position"`
	Display  bool   `yaml:"display"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: EODCHART_SECTION_KEY
// For example: EODCHART_DATABASE_PATH, EODCHART_TELEMETRY_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "uaa",
			Name: "Engineering on Display",
		},
		Database: DatabaseConfig{
			Path:        "./data/eodchart.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "eodchart-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 60,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Ticks:   7 * 24 * 4,
			Timeout: 30,
		},
		Chart: ChartConfig{
			ConfigTTL: 14,
			Poll: PollConfig{
				Attempts: 3,
				Interval: 10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: EODCHART_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EODCHART_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("EODCHART_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("EODCHART_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("EODCHART_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("EODCHART_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("EODCHART_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("EODCHART_TELEMETRY_URL"); v != "" {
		cfg.Telemetry.ServerURL = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Telemetry.ServerURL == "" {
		errs = append(errs, "telemetry.server_url is required (set EODCHART_TELEMETRY_URL environment variable)")
	} else if !strings.HasPrefix(c.Telemetry.ServerURL, "http://") && !strings.HasPrefix(c.Telemetry.ServerURL, "https://") {
		errs = append(errs, "telemetry.server_url must be an http or https URL")
	}
	if c.Telemetry.Ticks < 1 {
		errs = append(errs, "telemetry.ticks must be positive")
	}
	if c.Telemetry.Timeout < 1 {
		errs = append(errs, "telemetry.timeout must be positive")
	}

	if c.Chart.ConfigTTL < 1 {
		errs = append(errs, "chart.config_ttl must be positive")
	}
	if c.Chart.Poll.Attempts < 1 {
		errs = append(errs, "chart.poll.attempts must be positive")
	}
	if c.Chart.Poll.Interval < 1 {
		errs = append(errs, "chart.poll.interval must be positive")
	}
	for i, axis := range c.Chart.Axes {
		if axis.ID == "" {
			errs = append(errs, fmt.Sprintf("chart.axes[%d].id is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetTelemetryTimeout returns the per-request telemetry timeout as a Duration.
func (c *Config) GetTelemetryTimeout() time.Duration {
	return time.Duration(c.Telemetry.Timeout) * time.Second
}

// GetConfigTTL returns the assembled chart configuration lifetime.
func (c *Config) GetConfigTTL() time.Duration {
	return time.Duration(c.Chart.ConfigTTL) * time.Minute
}

// GetPollInterval returns the wait between temperature poll attempts.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Chart.Poll.Interval) * time.Second
}
