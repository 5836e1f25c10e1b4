// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": 276725, "recommendations": [...]},
//	  "metadata": {
//	    "timestamp": "2026-03-01T12:00:00Z",
//	    "query_time_ms": 12
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "MODEL_NOT_LOADED",
//	    "message": "No recommendation model is loaded"
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Referenced user or book does not exist
//   - CONFLICT: Resource already exists
//   - MODEL_NOT_LOADED: No model is being served yet
//   - DATA_SOURCE_UNAVAILABLE: Rating store unreachable, retry later
//   - SERVICE_UNAVAILABLE: Readiness check failed
//   - DATABASE_ERROR: Query execution failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeModelNotLoaded     = "MODEL_NOT_LOADED"
	ErrCodeDataSource         = "DATA_SOURCE_UNAVAILABLE"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// WelcomeResponse is returned by the root endpoint.
type WelcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthStatus is returned by the liveness and readiness probes.
type HealthStatus struct {
	Status      string            `json:"status"` // "ok" or "unavailable"
	Version     string            `json:"version,omitempty"`
	Uptime      float64           `json:"uptime_seconds"`
	ModelLoaded bool              `json:"model_loaded"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// DatabaseHealth is returned by the database diagnostic endpoint.
type DatabaseHealth struct {
	Driver        string `json:"driver"`
	UserCount     int64  `json:"user_count"`
	BookCount     int64  `json:"book_count"`
	RatingCount   int64  `json:"rating_count"`
	SchemaVersion int    `json:"schema_version"`
	Breaker       string `json:"circuit_breaker,omitempty"`
}
