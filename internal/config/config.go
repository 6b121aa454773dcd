// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Validation ValidationConfig
	Security   SecurityConfig
	Metrics    MetricsConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, a
	// validation may legitimately run for the whole time budget)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 20m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"20m"`
}

// StorageConfig selects and authenticates the blob store holding input files.
type StorageConfig struct {
	// Provider is the cloud hosting input files: AWS, GCP or LOCAL (default: AWS)
	Provider string `env:"STORAGE_PROVIDER" envAlt:"CLOUD_PROVIDER" default:"AWS"`

	// Region is the bucket region, used by AWS (default: us-west-2)
	Region string `env:"STORAGE_REGION" envAlt:"AWS_REGION" default:"us-west-2"`

	// AccessKeyID is the optional static access key id
	AccessKeyID string `env:"STORAGE_ACCESS_KEY_ID"`

	// AccessKeyData is the optional secret key, or a service account JSON for GCP
	AccessKeyData string `env:"STORAGE_ACCESS_KEY_DATA"`
}

// ValidationConfig holds the limits applied to every validation run.
type ValidationConfig struct {
	// MaxFileSize is the largest file validated, larger files are skipped (default: 1.5GiB)
	MaxFileSize int64 `env:"VALIDATION_MAX_FILE_SIZE" default:"1610612736"`

	// StreamChunks is the number of byte ranges a streamed file is read in (default: 4)
	StreamChunks int `env:"VALIDATION_STREAM_CHUNKS" default:"4"`

	// CheckInterval is how many rows pass between clock checks (default: 100000)
	CheckInterval int `env:"VALIDATION_CHECK_INTERVAL" default:"100000"`

	// TimeBudget is how long the row loop may run (default: 15m)
	TimeBudget time.Duration `env:"VALIDATION_TIME_BUDGET" default:"15m"`

	// MaxCohorts is the largest number of distinct cohorts accepted (default: 7)
	MaxCohorts int `env:"VALIDATION_MAX_COHORTS" default:"7"`

	// OutOfRangeErrorRatio is the fraction of out-of-range timestamps that fails
	// a file (default: 0.10)
	OutOfRangeErrorRatio float64 `env:"VALIDATION_OUT_OF_RANGE_RATIO" default:"0.10"`

	// TempDir holds downloaded copies, empty means the OS default
	TempDir string `env:"VALIDATION_TEMP_DIR"`

	// TempMaxAge is how old a leftover local copy must be before it is swept (default: 24h)
	TempMaxAge time.Duration `env:"VALIDATION_TEMP_MAX_AGE" default:"24h"`

	// TempSweepInterval is how often leftover local copies are swept (default: 1h)
	TempSweepInterval time.Duration `env:"VALIDATION_TEMP_SWEEP_INTERVAL" default:"1h"`

	// MaxConcurrent is the maximum number of parallel validations (default: 2)
	MaxConcurrent int `env:"VALIDATION_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for a validation slot (default: 30s)
	MaxWaitTime time.Duration `env:"VALIDATION_MAX_WAIT_TIME" default:"30s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// MetricsConfig holds prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether /metrics is served (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Namespace prefixes every metric name (default: prevalidate)
	Namespace string `env:"METRICS_NAMESPACE" default:"prevalidate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
