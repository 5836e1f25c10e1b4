// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
	"github.com/tomtom215/shelfwise/internal/supervisor/services"
)

// RecommendComponents holds the recommendation side of the server.
type RecommendComponents struct {
	Engine   *recommend.Engine
	Store    *storage.Store
	Ratings  database.RatingStore
	Reloader *services.ModelReloadService
	Retrain  *services.RetrainService // nil unless scheduled retraining is enabled
}

// initRecommend builds the engine and its supervised services. The newest
// artifact is loaded before the HTTP server starts so the first requests
// are served when a model exists.
func initRecommend(cfg *config.Config, db *database.DB) (*RecommendComponents, error) {
	logger := logging.Logger()

	ratings := database.NewBreakerStore(db, cfg.Recommend.Breaker)

	engine, err := recommend.NewEngine(cfg.RecommendConfig(), ratings, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	store, err := storage.NewStore(cfg.Recommend.ModelDir, cfg.Recommend.ModelName)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	reloader := services.NewModelReloadService(store, engine, services.ModelReloadConfig{
		PollInterval: cfg.Recommend.ReloadPollInterval,
		MinInterval:  cfg.Recommend.ReloadMinInterval,
	}, logger)

	// A corrupt latest artifact is not fatal: the server starts without a
	// model and the reloader picks up the next good version.
	if _, err := reloader.ReloadNow(); err != nil {
		logger.Warn().Err(err).Msg("initial model load failed")
	}
	if !engine.IsModelLoaded() {
		metrics.ModelLoaded.Set(0)
		logger.Warn().Str("dir", store.Dir()).Msg("no model loaded; recommendations unavailable until one is published")
	}

	components := &RecommendComponents{
		Engine:   engine,
		Store:    store,
		Ratings:  ratings,
		Reloader: reloader,
	}

	if cfg.Training.Schedule.Enabled {
		trainer, err := recommend.NewTrainer(
			cfg.RecommendConfig(),
			ratings,
			algorithms.NewMatrixFactorization(cfg.MatrixFactorizationConfig()),
			&pruningPublisher{store: store, keep: cfg.Recommend.KeepVersions},
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("create trainer: %w", err)
		}
		components.Retrain = services.NewRetrainService(trainer, services.RetrainServiceConfig{
			OnStartup: cfg.Training.Schedule.OnStartup,
			Interval:  cfg.Training.Schedule.Interval,
		}, reloader.Trigger, logger)
	}

	return components, nil
}

// pruningPublisher publishes through the store and then keeps only the
// newest keep versions. Pruning failures are logged and not returned.
type pruningPublisher struct {
	store *storage.Store
	keep  int
}

//nolint:gocritic // meta passed by value to match recommend.ArtifactPublisher
func (p *pruningPublisher) Publish(state *storage.ModelState, meta storage.Metadata) (storage.Metadata, error) {
	saved, err := p.store.Publish(state, meta)
	if err != nil {
		return saved, err
	}
	if p.keep > 0 {
		if removed, err := p.store.Prune(p.keep); err != nil {
			logging.Warn().Err(err).Msg("pruning old model versions failed")
		} else if removed > 0 {
			logging.Debug().Int("removed", removed).Msg("pruned old model versions")
		}
	}
	return saved, nil
}
