// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Rating store query performance
// - API endpoint latency and throughput
// - Recommendation serving
// - Model lifecycle and training runs

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of rating store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of rating store query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Current number of database connections in use",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "not_loaded", "unavailable", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Time to produce one recommendation list",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
	)

	RecommendColdStart = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cold_start_total",
			Help: "Recommendation requests for users absent from the training set",
		},
	)

	RecommendResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	// Model Lifecycle Metrics
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether a recommendation model is being served (1) or not (0)",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the model currently served",
		},
	)

	ModelReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_reloads_total",
			Help: "Total number of model reload attempts",
		},
		[]string{"result"}, // "success", "failure", "unchanged"
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Number of users in the served model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_items",
			Help: "Number of items in the served model",
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // "success", "empty", "unavailable", "skipped", "failure"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of completed training runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	TrainingRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_ratings",
			Help: "Number of ratings used by the most recent training run",
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Outcome labels used by RecordRecommendation.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeNotLoaded   = "not_loaded"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// RecordRecommendation records one served recommendation request.
func RecordRecommendation(outcome string, returned int, coldStart bool, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK || outcome == OutcomeEmpty {
		RecommendResultSize.Observe(float64(returned))
	}
	if coldStart {
		RecommendColdStart.Inc()
	}
}

// RecordModelServed updates the gauges describing the served model.
func RecordModelServed(version, users, items int) {
	ModelLoaded.Set(1)
	ModelVersion.Set(float64(version))
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
}

// RecordModelReload counts a reload attempt. A nil err with changed false
// means the newest artifact was already being served.
func RecordModelReload(changed bool, err error) {
	switch {
	case err != nil:
		ModelReloads.WithLabelValues("failure").Inc()
	case changed:
		ModelReloads.WithLabelValues("success").Inc()
	default:
		ModelReloads.WithLabelValues("unchanged").Inc()
	}
}

// Training result labels used by RecordTrainingRun.
const (
	TrainingSuccess     = "success"
	TrainingEmpty       = "empty"
	TrainingUnavailable = "unavailable"
	TrainingSkipped     = "skipped"
	TrainingFailure     = "failure"
)

// RecordTrainingRun records the outcome of one training run. ratings is
// ignored unless result is TrainingSuccess.
func RecordTrainingRun(result string, ratings int, duration time.Duration) {
	TrainingRuns.WithLabelValues(result).Inc()
	if result != TrainingSuccess {
		return
	}
	TrainingDuration.Observe(duration.Seconds())
	TrainingRatings.Set(float64(ratings))
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// ClassifyTrainingError maps a trainer error to a result label using the
// provided sentinels.
func ClassifyTrainingError(err, empty, unavailable, inProgress error) string {
	switch {
	case err == nil:
		return TrainingSuccess
	case errors.Is(err, empty):
		return TrainingEmpty
	case errors.Is(err, unavailable):
		return TrainingUnavailable
	case errors.Is(err, inProgress):
		return TrainingSkipped
	default:
		return TrainingFailure
	}
}

// SetAppInfo publishes the build information gauge.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// StatusLabel formats an HTTP status for the status_code label.
func StatusLabel(status int) string {
	return strconv.Itoa(status)
}
