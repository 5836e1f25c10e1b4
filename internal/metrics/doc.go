// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed on /metrics by the API router.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Database Metrics:
  - db_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - db_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - db_connections_in_use: Connections in use (gauge)

Recommendation Metrics:
  - recommend_requests_total: Requests by outcome (counter)
    Labels: outcome (ok, empty, not_loaded, unavailable, error)
  - recommend_duration_seconds: Time per list (histogram)
  - recommend_cold_start_total: Requests for users unknown to the model (counter)
  - recommend_result_size: Items per response (histogram)

Model Metrics:
  - model_loaded, model_version, model_users, model_items (gauges)
  - model_reloads_total: Reload attempts (counter)
    Labels: result (success, failure, unchanged)

Training Metrics:
  - training_runs_total: Runs by result (counter)
    Labels: result (success, empty, unavailable, skipped, failure)
  - training_duration_seconds: Completed run duration (histogram)
  - training_ratings: Ratings in the last successful run (gauge)
  - training_last_success_timestamp: Unix time of the last success (gauge)

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result (counter)
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

# Example PromQL

	# p95 recommendation latency
	histogram_quantile(0.95, rate(recommend_duration_seconds_bucket[5m]))

	# share of requests hitting an unavailable store
	sum(rate(recommend_requests_total{outcome="unavailable"}[5m])) / sum(rate(recommend_requests_total[5m]))

# Cardinality Management

Endpoint labels use chi route patterns (for example
/api/v1/recommendations/{userID}), never raw paths, so user IDs do not
create new series.

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
