// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// DefaultSlowRequestThreshold is the duration above which a request is
// logged at warn level.
const DefaultSlowRequestThreshold = time.Second

// AccessLog returns middleware that logs one line per request with the
// request and correlation IDs from the context. Requests slower than
// slowThreshold are logged at warn level, 5xx responses at error level,
// everything else at debug.
func AccessLog(slowThreshold time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logger.Error()
			case duration > slowThreshold:
				event = logger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Request completed")
		}
	}
}
