// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// maxBodyBytes bounds request bodies; every write endpoint takes one small object.
const maxBodyBytes = 64 << 10

// retryAfterSeconds is sent with DATA_SOURCE_UNAVAILABLE responses.
const retryAfterSeconds = "5"

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope timed from start.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondAPIError(w, status, &models.APIError{Code: code, Message: message}, err)
}

// respondAPIError sends a prepared APIError. A non-nil cause is logged, never
// returned to the client.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError, cause error) {
	if cause != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		event.Str("code", sanitizeLogValue(apiErr.Code)).
			Str("error", sanitizeLogValue(cause.Error())).
			Int("status", status).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}

// respondUnavailable reports a rating store outage as a retryable 503.
func respondUnavailable(w http.ResponseWriter, err error) {
	w.Header().Set("Retry-After", retryAfterSeconds)
	respondError(w, http.StatusServiceUnavailable, models.ErrCodeDataSource,
		"Rating store is unavailable, please retry later", err)
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	if validationErr := validation.ValidateStruct(v); validationErr != nil {
		return validationErr.ToAPIError()
	}
	return nil
}

// decodeJSON reads a single JSON object from the request body into dst and
// validates it. The returned APIError is ready to send as a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *models.APIError {
	if r.Body == nil {
		return &models.APIError{Code: models.ErrCodeValidation, Message: "Request body is required"}
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &models.APIError{Code: models.ErrCodeValidation, Message: "Request body is required"}
		case errors.As(err, &maxErr):
			return &models.APIError{Code: models.ErrCodeValidation, Message: "Request body too large"}
		default:
			return &models.APIError{
				Code:    models.ErrCodeValidation,
				Message: "Invalid JSON request body",
				Details: map[string]interface{}{"error": sanitizeLogValue(err.Error())},
			}
		}
	}
	if dec.More() {
		return &models.APIError{Code: models.ErrCodeValidation, Message: "Request body must contain a single JSON object"}
	}

	return validateRequest(dst)
}

// parseTopN reads the top_n query parameter. Values above a positive limit
// are capped; with limit 0 the value is passed through and the engine returns
// every candidate when it exceeds them. Zero is a valid request for an empty
// list.
func parseTopN(r *http.Request, defaultValue, limit int) (int, *models.APIError) {
	value := r.URL.Query().Get("top_n")
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "top_n must be a non-negative integer",
			Details: map[string]interface{}{"field": "top_n", "value": value},
		}
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n, nil
}

// parseUserID parses a positive user ID path segment.
func parseUserID(raw string) (int64, *models.APIError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "userID must be a positive integer",
			Details: map[string]interface{}{"field": "userID", "value": raw},
		}
	}
	return id, nil
}
