// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package api provides the HTTP API for Shelfwise.

The router is built on go-chi/chi v5. Every response uses the envelope
defined by models.APIResponse:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "query_time_ms": 3}}
	{"status": "error", "error": {"code": "...", "message": "..."}, "metadata": {...}}

# Endpoints

Core:
  - GET /                                  welcome message
  - GET /api/v1/health/live                liveness probe, always 200
  - GET /api/v1/health/ready               200 when the store answers and a model is loaded
  - GET /api/v1/health/db                  row counts and schema version
  - GET /metrics                           Prometheus exposition

Catalogue:
  - POST /api/v1/users                     201, 409 when the user exists
  - POST /api/v1/items                     201, 409 when the ISBN exists
  - POST /api/v1/preferences               201, upserts one rating (0..10)

Recommendations:
  - GET /api/v1/recommendations/{userID}   ?top_n=10, ranked unrated books
  - GET /api/v1/model                      metadata of the served model

# Error Codes

  - VALIDATION_ERROR (400): malformed body, path or query parameter
  - NOT_FOUND (404): a preference references an unknown user or book
  - CONFLICT (409): user or book already exists
  - RATE_LIMIT_EXCEEDED (429): per-IP limit hit
  - MODEL_NOT_LOADED (503): no model has been published yet
  - DATA_SOURCE_UNAVAILABLE (503): the rating store is unreachable, sent with Retry-After
  - DATABASE_ERROR (500): a statement failed

A user who has rated every book receives 200 with an empty
recommendations array, never an error.

# Middleware

Global: request ID with logging context, RealIP, Recoverer, CORS and gzip
compression. The API routes add the per-IP rate limiter, security headers,
Prometheus instrumentation and the access log.
*/
package api
