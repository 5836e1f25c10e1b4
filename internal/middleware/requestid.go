// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package middleware

import (
	"context"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// RequestIDHeader carries the request ID in both directions. Clients of the
// recommendation API can quote it when reporting a bad or slow response.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds IDs accepted from upstream proxies.
const maxRequestIDLength = 64

// RequestID reuses a well-formed X-Request-ID from upstream or generates one,
// echoes it on the response, and stores it on the request context together
// with a fresh correlation ID. The access log and handlers read both through
// logging.Ctx.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
		next(w, r.WithContext(ctx))
	}
}

// validRequestID accepts 1..maxRequestIDLength printable ASCII characters
// without spaces, the shape proxies and load balancers emit.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}
