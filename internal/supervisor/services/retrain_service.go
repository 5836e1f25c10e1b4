// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ModelTrainer runs one training job. Satisfied by *recommend.Trainer.
type ModelTrainer interface {
	Run(ctx context.Context) (*recommend.TrainResult, error)
}

// RetrainServiceConfig holds configuration for scheduled retraining.
type RetrainServiceConfig struct {
	// OnStartup runs a training job as soon as the service starts.
	OnStartup bool

	// Interval is how often to retrain. Default: 24h
	Interval time.Duration
}

// RetrainService runs the offline trainer on a schedule inside the server
// process. Each run publishes a new artifact; serving picks it up through
// onPublished (usually ModelReloadService.Trigger) or the next directory scan.
type RetrainService struct {
	trainer     ModelTrainer
	config      RetrainServiceConfig
	onPublished func()
	logger      zerolog.Logger
	name        string
}

// NewRetrainService creates a retrain service. onPublished may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(trainer ModelTrainer, cfg RetrainServiceConfig, onPublished func(), logger zerolog.Logger) *RetrainService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &RetrainService{
		trainer:     trainer,
		config:      cfg,
		onPublished: onPublished,
		logger:      logger.With().Str("service", "retrain").Logger(),
		name:        "retrain-service",
	}
}

// Serve implements the suture.Service interface.
// A failed run is logged and retried on the next tick; it never stops the
// service because the previous artifact keeps serving.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("retrain service starting")

	if s.config.OnStartup {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled training triggered")
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single training run and reports its outcome label.
func (s *RetrainService) RunOnce(ctx context.Context) string {
	start := time.Now()
	result, err := s.trainer.Run(ctx)
	outcome := metrics.ClassifyTrainingError(err,
		recommend.ErrEmptyTrainingSet,
		recommend.ErrDataSourceUnavailable,
		recommend.ErrTrainingInProgress,
	)

	ratings := 0
	if result != nil {
		ratings = result.Metadata.RatingCount
	}
	metrics.RecordTrainingRun(outcome, ratings, time.Since(start))

	switch {
	case err == nil:
		s.logger.Info().
			Int("version", result.Metadata.Version).
			Int("ratings", ratings).
			Dur("duration", time.Since(start)).
			Msg("scheduled training published a model")
		if s.onPublished != nil {
			s.onPublished()
		}
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Info().Msg("training already running, skipped")
	case errors.Is(err, recommend.ErrEmptyTrainingSet):
		s.logger.Warn().Msg("no ratings to train on, keeping current model")
	case ctx.Err() != nil:
		s.logger.Info().Err(err).Msg("training interrupted by shutdown")
	default:
		s.logger.Error().Err(err).Msg("scheduled training failed")
	}
	return outcome
}

// String returns the service name for logging.
func (s *RetrainService) String() string {
	return s.name
}
