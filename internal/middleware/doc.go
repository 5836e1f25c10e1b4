// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package middleware provides HTTP middleware components for the API.

Key Components:

  - RequestID: request ID and correlation ID in the response header and logging context
  - PrometheusMetrics: request counts and latency labelled by chi route pattern
  - SecurityHeaders: nosniff, frame denial, no-store and HSTS behind TLS
  - AccessLog: one structured log line per request, warn when slow

All middleware here takes and returns http.HandlerFunc. The router adapts
them to chi with a one-line wrapper:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.AccessLog(time.Second)))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

CORS, rate limiting, panic recovery and compression come from go-chi
packages and are wired in internal/api.

Thread Safety:

All middleware components are safe for concurrent use; per-request state
lives in the request context or a per-request response writer wrapper.

See Also:

  - internal/api: router and handlers wrapped by this middleware
  - internal/metrics: Prometheus metrics definitions
  - internal/logging: context helpers used for request tracing
*/
package middleware
