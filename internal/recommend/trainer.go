// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// RatingSource is the read-only view of the rating store used by training.
type RatingSource interface {
	// GetRatingsAboveThreshold returns every rating with Score > threshold.
	GetRatingsAboveThreshold(ctx context.Context, threshold int) ([]Rating, error)
}

// Fitter fits a latent factor model to a prepared training set.
// Implementations live in the algorithms package.
type Fitter interface {
	// Name identifies the fitting algorithm in logs and metrics.
	Name() string

	// Fit trains on ratings, every one of which lies inside scale and
	// appears once per (user, item) pair.
	Fit(ctx context.Context, ratings []Rating, scale Scale) (*storage.ModelState, error)
}

// ArtifactPublisher persists a trained model. *storage.Store satisfies it.
type ArtifactPublisher interface {
	Publish(state *storage.ModelState, meta storage.Metadata) (storage.Metadata, error)
}

// TrainResult describes one completed training run.
type TrainResult struct {
	Metadata storage.Metadata

	// Read is the number of ratings returned by the store.
	Read int

	// OutOfScale counts ratings skipped because their score was outside
	// the configured scale.
	OutOfScale int

	// Duplicates counts ratings that overwrote an earlier rating of the
	// same (user, item) pair.
	Duplicates int

	Duration time.Duration
}

// Trainer runs the offline training job: read ratings, fit, publish exactly
// one artifact. It shares no locks with the serving path.
type Trainer struct {
	config    *Config
	source    RatingSource
	fitter    Fitter
	publisher ArtifactPublisher
	logger    zerolog.Logger

	runMu sync.Mutex
}

// NewTrainer creates a trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg *Config, source RatingSource, fitter Fitter, publisher ArtifactPublisher, logger zerolog.Logger) (*Trainer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil || fitter == nil || publisher == nil {
		return nil, fmt.Errorf("rating source, fitter and publisher are required")
	}
	return &Trainer{
		config:    cfg,
		source:    source,
		fitter:    fitter,
		publisher: publisher,
		logger:    logger.With().Str("component", "trainer").Str("algorithm", fitter.Name()).Logger(),
	}, nil
}

// Run executes one training run. Failures never touch previously published
// artifacts. A concurrent call returns ErrTrainingInProgress.
func (t *Trainer) Run(ctx context.Context) (*TrainResult, error) {
	if !t.runMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer t.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.config.Training.Timeout)
	defer cancel()

	runID := uuid.NewString()
	logger := t.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	raw, err := t.source.GetRatingsAboveThreshold(ctx, t.config.Training.Threshold)
	if err != nil {
		if errors.Is(err, ErrDataSourceUnavailable) {
			return nil, fmt.Errorf("read ratings: %w", err)
		}
		return nil, fmt.Errorf("read ratings: %w: %w", ErrDataSourceUnavailable, err)
	}

	ratings, outOfScale, duplicates := prepareTrainingSet(raw, t.config.Training.Threshold, t.config.Scale)
	if outOfScale > 0 {
		logger.Warn().Int("skipped", outOfScale).Msg("ratings outside the rating scale skipped")
	}
	if len(ratings) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	logger.Info().
		Int("ratings", len(ratings)).
		Int("duplicates", duplicates).
		Msg("starting model training")

	state, err := t.fitter.Fit(ctx, ratings, t.config.Scale)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", t.fitter.Name(), err)
	}
	trainedAt := time.Now().UTC()

	meta, err := t.publisher.Publish(state, storage.Metadata{
		RunID:              runID,
		TrainedAt:          trainedAt,
		RatingCount:        len(ratings),
		Fingerprint:        Fingerprint(ratings),
		TrainingDurationMS: trainedAt.Sub(start).Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("publish artifact: %w", err)
	}

	result := &TrainResult{
		Metadata:   meta,
		Read:       len(raw),
		OutOfScale: outOfScale,
		Duplicates: duplicates,
		Duration:   time.Since(start),
	}
	logger.Info().
		Int("version", meta.Version).
		Int("users", meta.UserCount).
		Int("items", meta.ItemCount).
		Dur("duration", result.Duration).
		Msg("model training complete")

	return result, nil
}

// prepareTrainingSet drops ratings at or below threshold or outside scale,
// collapses duplicate pairs so the last occurrence wins, and orders the
// result by (user, item) so fitting does not depend on store order.
func prepareTrainingSet(raw []Rating, threshold int, scale Scale) (ratings []Rating, outOfScale, duplicates int) {
	type pair struct {
		user int64
		item string
	}
	index := make(map[pair]int, len(raw))
	ratings = make([]Rating, 0, len(raw))

	for _, r := range raw {
		if r.Score <= threshold {
			continue
		}
		if !scale.Contains(float64(r.Score)) {
			outOfScale++
			continue
		}
		key := pair{r.UserID, r.ItemID}
		if k, ok := index[key]; ok {
			ratings[k].Score = r.Score
			duplicates++
			continue
		}
		index[key] = len(ratings)
		ratings = append(ratings, r)
	}

	sort.Slice(ratings, func(a, b int) bool {
		if ratings[a].UserID != ratings[b].UserID {
			return ratings[a].UserID < ratings[b].UserID
		}
		return ratings[a].ItemID < ratings[b].ItemID
	})
	return ratings, outOfScale, duplicates
}

// Fingerprint hashes a prepared training set so two artifacts can be compared
// for staleness without retraining. ratings must already be ordered.
func Fingerprint(ratings []Rating) string {
	h := sha256.New()
	var buf [8]byte
	for _, r := range ratings {
		binary.BigEndian.PutUint64(buf[:], uint64(r.UserID))
		h.Write(buf[:])
		h.Write([]byte(r.ItemID))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(r.Score))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
