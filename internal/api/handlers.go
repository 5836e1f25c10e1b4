// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// CatalogStore is the slice of the database used by the handlers.
type CatalogStore interface {
	Ping(ctx context.Context) error
	Driver() string
	CreateUser(ctx context.Context, user *models.User) error
	CreateBook(ctx context.Context, book *models.Book) error
	UpsertRating(ctx context.Context, pref *models.Preference) error
	GetRecordCounts(ctx context.Context) (database.RecordCounts, error)
	GetCurrentSchemaVersion(ctx context.Context) (int, error)
}

// Recommender serves ranked lists from the currently loaded model.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, topN int) ([]recommend.Prediction, error)
	RecommendWith(ctx context.Context, model *recommend.Model, userID int64, topN int) ([]recommend.Prediction, error)
	Model() *recommend.Model
	IsModelLoaded() bool
	DefaultTopN() int
	Stats() recommend.EngineStats
}

// BreakerStatus reports the state of the circuit breaker in front of the
// rating store.
type BreakerStatus interface {
	State() string
}

// Handler handles HTTP requests
type Handler struct {
	db        CatalogStore
	engine    Recommender
	breaker   BreakerStatus
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler creates a new Handler. cfg may be nil in tests.
func NewHandler(db CatalogStore, engine Recommender, cfg *config.Config, version string) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}

// SetBreaker attaches the circuit breaker reported by the database health
// endpoint.
func (h *Handler) SetBreaker(b BreakerStatus) {
	h.breaker = b
}

// maxTopN is the configured top_n cap; 0 means no cap.
func (h *Handler) maxTopN() int {
	if h.config == nil {
		return 0
	}
	return h.config.API.MaxTopN
}
