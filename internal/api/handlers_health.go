// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

// healthCheckTimeout bounds the store ping performed by the probes.
const healthCheckTimeout = 2 * time.Second

// Welcome handles GET /.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, models.WelcomeResponse{
		Message: "Welcome to the Shelfwise book recommendation API",
		Version: h.version,
	}, time.Now())
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:      "ok",
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Seconds(),
		ModelLoaded: h.engine != nil && h.engine.IsModelLoaded(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only when the rating store answers and a model is loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	checks := map[string]string{"database": "ok", "model": "ok"}
	ready := true

	if h.db == nil {
		checks["database"] = "not configured"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := h.db.Ping(ctx)
		cancel()
		if err != nil {
			checks["database"] = "unreachable"
			ready = false
		}
	}

	modelLoaded := h.engine != nil && h.engine.IsModelLoaded()
	if !modelLoaded {
		checks["model"] = "not loaded"
		ready = false
	}

	health := models.HealthStatus{
		Status:      "ok",
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Seconds(),
		ModelLoaded: modelLoaded,
		Checks:      checks,
	}
	if !ready {
		health.Status = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   health,
			Metadata: models.Metadata{
				Timestamp:   time.Now(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
			Error: &models.APIError{
				Code:    models.ErrCodeServiceUnavailable,
				Message: "Service is not ready",
			},
		})
		return
	}
	respondSuccess(w, http.StatusOK, health, start)
}

// HealthDB handles GET /api/v1/health/db with row counts and schema version.
func (h *Handler) HealthDB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.db == nil {
		respondUnavailable(w, nil)
		return
	}

	counts, err := h.db.GetRecordCounts(r.Context())
	if err != nil {
		if database.IsUnavailable(err) {
			respondUnavailable(w, err)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to read record counts", err)
		return
	}
	version, err := h.db.GetCurrentSchemaVersion(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to read schema version", err)
		return
	}

	health := models.DatabaseHealth{
		Driver:        h.db.Driver(),
		UserCount:     counts.Users,
		BookCount:     counts.Books,
		RatingCount:   counts.Ratings,
		SchemaVersion: version,
	}
	if h.breaker != nil {
		health.Breaker = h.breaker.State()
	}
	respondSuccess(w, http.StatusOK, health, start)
}
