// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateTraining(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateDatabase validates the rating store configuration
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if err := validateDatabaseURL(c.Database.URL); err != nil {
			return fmt.Errorf("DATABASE_URL is invalid: %w", err)
		}
		if c.IsProduction() && containsPlaceholder(c.Database.URL) {
			return fmt.Errorf("DATABASE_URL contains a placeholder value; set real credentials before running with ENVIRONMENT=production")
		}
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER=duckdb")
		}
		if c.Database.Threads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must be >= 0")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of: postgres, duckdb")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS (%d)", c.Database.MaxOpenConns)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

// validateDatabaseURL checks that rawURL is a postgres connection URL with a
// host and database name.
func validateDatabaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q (must be postgres or postgresql)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	if strings.Trim(parsed.Path, "/") == "" {
		return fmt.Errorf("URL must include a database name")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateAPI validates HTTP API configuration
func (c *Config) validateAPI() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.API.MaxTopN < 0 {
		return fmt.Errorf("API_MAX_TOP_N must be >= 0")
	}
	if c.API.MaxTopN > 0 && c.Recommend.DefaultTopN > c.API.MaxTopN {
		return fmt.Errorf("RECOMMEND_DEFAULT_TOP_N (%d) must not exceed API_MAX_TOP_N (%d)",
			c.Recommend.DefaultTopN, c.API.MaxTopN)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.API.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if a wildcard origin is configured in
// production and should be logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.API.RateLimitDisabled {
		return nil
	}

	if c.API.RateLimitRequests < minRateLimitRequests || c.API.RateLimitRequests > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.API.RateLimitWindow < minRateLimitWindow || c.API.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateRecommend validates serving configuration
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultTopN < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_TOP_N must be at least 1")
	}
	if r.LookupTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_LOOKUP_TIMEOUT must be positive")
	}
	if r.ModelDir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if r.ModelName == "" || strings.ContainsAny(r.ModelName, `/\`) || strings.Contains(r.ModelName, "_v") {
		return fmt.Errorf("MODEL_NAME must be non-empty and must not contain path separators or \"_v\"")
	}
	if r.KeepVersions < 1 {
		return fmt.Errorf("MODEL_KEEP_VERSIONS must be at least 1")
	}
	if r.ReloadPollInterval <= 0 {
		return fmt.Errorf("MODEL_RELOAD_POLL_INTERVAL must be positive")
	}
	if r.ReloadMinInterval < 0 {
		return fmt.Errorf("MODEL_RELOAD_MIN_INTERVAL must be >= 0")
	}
	return c.validateBreaker()
}

// validateBreaker validates circuit breaker settings (only if enabled)
func (c *Config) validateBreaker() error {
	b := c.Recommend.Breaker
	if !b.Enabled {
		return nil
	}
	if b.MaxRequests < 1 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

// validateTraining validates hyperparameters and scheduling
func (c *Config) validateTraining() error {
	t := c.Training
	if t.Factors < 1 {
		return fmt.Errorf("MF_FACTORS must be at least 1")
	}
	if t.Epochs < 1 {
		return fmt.Errorf("MF_EPOCHS must be at least 1")
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("MF_LEARNING_RATE must be positive")
	}
	if t.Regularization <= 0 {
		return fmt.Errorf("MF_REGULARIZATION must be positive")
	}
	if t.InitStdDev <= 0 {
		return fmt.Errorf("MF_INIT_STD_DEV must be positive")
	}
	if !(t.ScaleMin < t.ScaleMax) {
		return fmt.Errorf("RATING_SCALE_MIN (%v) must be below RATING_SCALE_MAX (%v)", t.ScaleMin, t.ScaleMax)
	}
	if t.Threshold < 0 {
		return fmt.Errorf("RATING_THRESHOLD must be >= 0")
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("TRAINING_TIMEOUT must be positive")
	}
	if t.Schedule.Enabled && t.Schedule.Interval < time.Minute {
		return fmt.Errorf("TRAIN_INTERVAL must be at least 1m when TRAIN_SCHEDULE_ENABLED=true")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
}

// containsPlaceholder checks if a value contains common placeholder patterns
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
