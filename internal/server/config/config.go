package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPageSize     = 10
	DefaultTimeout      = 15 * time.Second
	DefaultTickInterval = time.Second
)

// holds the configuration for connecting to InfluxDB. An empty URL disables history recording.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Enabled reports whether snapshots should be written to InfluxDB.
func (c InfluxDBConfig) Enabled() bool {
	return c.URL != ""
}

// holds the location of the management endpoint the dashboard reads from
type ActuatorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type DashboardConfig struct {
	PageSize     int           `yaml:"page_size"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// holds overall server config
type ServerConfig struct {
	ListenAddress     string          `yaml:"listen_address"`
	TestServerAddress string          `yaml:"testserver_listen_address"`
	Actuator          ActuatorConfig  `yaml:"actuator"`
	Dashboard         DashboardConfig `yaml:"dashboard"`
	InfluxDB          InfluxDBConfig  `yaml:"influxdb"`
	EnableDebugLog    bool            `yaml:"enable_debug_log"`
}

func defaults() *ServerConfig {
	return &ServerConfig{
		ListenAddress:     ":8080",
		TestServerAddress: ":8081",
		Actuator: ActuatorConfig{
			BaseURL: "http://localhost:8081/actuator",
			Timeout: DefaultTimeout,
		},
		Dashboard: DashboardConfig{
			PageSize:     DefaultPageSize,
			TickInterval: DefaultTickInterval,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// DASHBOARD_CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*ServerConfig, error) {
	cfg := defaults()

	if path, ok := os.LookupEnv("DASHBOARD_CONFIG_FILE"); ok && path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ListenAddress = getEnv("SERVER_LISTEN_ADDRESS", cfg.ListenAddress)
	cfg.TestServerAddress = getEnv("TESTSERVER_LISTEN_ADDRESS", cfg.TestServerAddress)
	cfg.EnableDebugLog = getEnvAsBool("SERVER_ENABLE_DEBUG_LOG", cfg.EnableDebugLog)

	cfg.Actuator.BaseURL = getEnv("ACTUATOR_BASE_URL", cfg.Actuator.BaseURL)
	cfg.Actuator.Timeout = getEnvAsDuration("ACTUATOR_TIMEOUT", cfg.Actuator.Timeout)

	cfg.Dashboard.PageSize = getEnvAsInt("DASHBOARD_PAGE_SIZE", cfg.Dashboard.PageSize)
	cfg.Dashboard.TickInterval = getEnvAsDuration("DASHBOARD_TICK_INTERVAL", cfg.Dashboard.TickInterval)

	cfg.InfluxDB.URL = getEnv("INFLUXDB_URL", cfg.InfluxDB.URL)
	cfg.InfluxDB.Token = getEnv("INFLUXDB_TOKEN", cfg.InfluxDB.Token)
	cfg.InfluxDB.Org = getEnv("INFLUXDB_ORG", cfg.InfluxDB.Org)
	cfg.InfluxDB.Bucket = getEnv("INFLUXDB_BUCKET", cfg.InfluxDB.Bucket)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate normalizes the configuration and rejects values the dashboard cannot run with.
func (cfg *ServerConfig) Validate() error {
	base := strings.TrimRight(strings.TrimSpace(cfg.Actuator.BaseURL), "/")
	if base == "" {
		return errors.New("actuator base url must not be empty")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("actuator base url %q is not an absolute url", base)
	}
	cfg.Actuator.BaseURL = base

	if cfg.Actuator.Timeout < 0 {
		return errors.New("actuator timeout must not be negative")
	}
	if cfg.Dashboard.PageSize <= 0 {
		cfg.Dashboard.PageSize = DefaultPageSize
	}
	if cfg.Dashboard.TickInterval <= 0 {
		cfg.Dashboard.TickInterval = DefaultTickInterval
	}

	// Validate essential InfluxDB settings when recording is enabled
	if cfg.InfluxDB.Enabled() {
		if cfg.InfluxDB.Token == "" {
			appLogger.Error("INFLUXDB_TOKEN environment variable is not set.")
		}
		if cfg.InfluxDB.Org == "" {
			return errors.New("influxdb org is required when INFLUXDB_URL is set")
		}
		if cfg.InfluxDB.Bucket == "" {
			return errors.New("influxdb bucket is required when INFLUXDB_URL is set")
		}
	}
	return nil
}

// get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as a boolean.
func getEnvAsBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		appLogger.Warn("Failed to parse env var %s as bool: %v. Using fallback: %t", key, err, fallback)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return n
		}
		appLogger.Warn("Failed to parse env var %s as int: %v. Using fallback: %d", key, err, fallback)
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return d
		}
		appLogger.Warn("Failed to parse env var %s as duration: %v. Using fallback: %s", key, err, fallback)
	}
	return fallback
}
