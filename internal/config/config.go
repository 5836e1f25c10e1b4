// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. .env file (godotenv, optional) populates the process environment
//  2. Defaults: built-in values for every setting
//  3. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/shelfwise/config.yaml)
//  4. Environment Variables: override any setting via the mapping in koanf.go
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Database: rating store driver and connection settings
//     - Server: HTTP listener and timeouts
//
//  2. API:
//     - CORS origins, rate limiting, request bounds
//
//  3. Recommendation:
//     - Recommend: serving limits, model directory, reload and breaker settings
//     - Training: hyperparameters, rating scale and scheduled retraining
//
//  4. Observability:
//     - Logging: log level and output format
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

// DatabaseConfig holds rating store settings.
//
// Driver "postgres" connects to URL through pgx. Driver "duckdb" opens the
// embedded database at Path (":memory:" for an ephemeral store), which is the
// usual choice for local development and tests.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`

	// DuckDB only.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// QueryTimeout bounds individual statements issued outside a request
	// context, such as schema setup.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development | production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds settings for the public HTTP API.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MaxTopN caps the top_n query parameter. 0 disables the cap.
	MaxTopN int `koanf:"max_top_n"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds serving settings for the recommendation engine.
type RecommendConfig struct {
	DefaultTopN   int           `koanf:"default_top_n"`
	LookupTimeout time.Duration `koanf:"lookup_timeout"`

	// ModelDir holds versioned artifacts named {ModelName}_v{N}.gob.gz.
	ModelDir     string `koanf:"model_dir"`
	ModelName    string `koanf:"model_name"`
	KeepVersions int    `koanf:"keep_versions"`

	// ReloadPollInterval is the fallback scan period when file system
	// notifications are unavailable or missed.
	ReloadPollInterval time.Duration `koanf:"reload_poll_interval"`

	// ReloadMinInterval throttles reloads triggered by bursts of file
	// events.
	ReloadMinInterval time.Duration `koanf:"reload_min_interval"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig controls the circuit breaker around rating store reads.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"` // half-open probes
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// TrainingConfig holds training hyperparameters and scheduling.
type TrainingConfig struct {
	Factors        int     `koanf:"factors"`
	Epochs         int     `koanf:"epochs"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`
	InitStdDev     float64 `koanf:"init_std_dev"`
	Seed           int64   `koanf:"seed"`

	ScaleMin  float64 `koanf:"scale_min"`
	ScaleMax  float64 `koanf:"scale_max"`
	Threshold int     `koanf:"threshold"`

	Timeout time.Duration `koanf:"timeout"`

	Schedule ScheduleConfig `koanf:"schedule"`
}

// ScheduleConfig controls in-process periodic retraining.
type ScheduleConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`
}

// Load loads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
