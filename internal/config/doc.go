// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package config provides centralized configuration management for Shelfwise.

Configuration is loaded with Koanf v2 from layered sources and validated once
at startup. The resulting Config is shared read-only by the server and the
training CLI.

# Configuration Sources

In order of increasing precedence:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/shelfwise/config.yaml
  - Environment variables, including those loaded from a local .env file

Only environment variables listed in the mapping in koanf.go are read, so
unrelated process variables never leak into configuration.

# Environment Variables

Database (DatabaseConfig):
  - DATABASE_DRIVER: postgres (default) or duckdb
  - DATABASE_URL: Postgres connection URL
  - DUCKDB_PATH: DuckDB file path, or :memory: (default: /data/shelfwise.duckdb)
  - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME, DB_QUERY_TIMEOUT

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8000)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development or production

API (APIConfig):
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Turn rate limiting off
  - API_MAX_TOP_N: Upper bound on top_n, 0 for none (default: 0)

Recommendation (RecommendConfig):
  - RECOMMEND_DEFAULT_TOP_N (default: 10), RECOMMEND_LOOKUP_TIMEOUT (default: 5s)
  - MODEL_DIR (default: /data/models), MODEL_NAME (default: latent_factor)
  - MODEL_KEEP_VERSIONS, MODEL_RELOAD_POLL_INTERVAL, MODEL_RELOAD_MIN_INTERVAL
  - BREAKER_*: Circuit breaker around rating store reads

Training (TrainingConfig):
  - MF_FACTORS (50), MF_EPOCHS (20), MF_LEARNING_RATE (0.005),
    MF_REGULARIZATION (0.02), MF_INIT_STD_DEV (0.1), MF_SEED (42)
  - RATING_SCALE_MIN (1), RATING_SCALE_MAX (10), RATING_THRESHOLD (0)
  - TRAINING_TIMEOUT (30m)
  - TRAIN_SCHEDULE_ENABLED, TRAIN_INTERVAL, TRAIN_ON_STARTUP

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file and line

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	engine, err := recommend.NewEngine(cfg.RecommendConfig(), db, logger)

# Thread Safety

The Config struct is immutable after Load() and safe for concurrent reads.
*/
package config
