// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Note: the engine talks to the rating store only through ItemProvider, which
// keeps this package free of database imports.

// ItemProvider is the read-only view of the rating store used on the request
// path. It is typically implemented by the database layer.
type ItemProvider interface {
	// GetAllItems returns every known item in a stable order.
	GetAllItems(ctx context.Context) ([]Item, error)

	// GetRatedItemIDs returns the set of item IDs userID has rated.
	GetRatedItemIDs(ctx context.Context, userID int64) (map[string]struct{}, error)
}

// Engine serves recommendations from a single shared model.
// It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	provider ItemProvider

	// model is replaced wholesale; readers load it once per request.
	model atomic.Pointer[Model]

	requestCount    atomic.Int64
	errorCount      atomic.Int64
	coldStartUsers  atomic.Int64
	modelSwaps      atomic.Int64
	candidatesTotal atomic.Int64
	lastLatencyMS   atomic.Int64
}

// NewEngine creates an engine without a model. Recommend returns
// ErrModelNotLoaded until LoadModel or SetModel succeeds.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, provider ItemProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("item provider is required")
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		provider: provider,
	}, nil
}

// LoadModel reads the artifact at path and publishes it. The previously
// served model stays active when loading fails.
func (e *Engine) LoadModel(path string) (*Model, error) {
	m, err := LoadModelFile(path)
	if err != nil {
		return nil, err
	}
	e.SetModel(m)
	e.logger.Info().
		Str("path", path).
		Int("version", m.Metadata().Version).
		Int("users", m.Info().UserCount).
		Int("items", m.Info().ItemCount).
		Msg("model loaded")
	return m, nil
}

// SetModel atomically publishes m and returns the model it replaced.
// In-flight requests finish with the model they started with.
func (e *Engine) SetModel(m *Model) *Model {
	prev := e.model.Swap(m)
	e.modelSwaps.Add(1)
	return prev
}

// Model returns the currently served model, or nil.
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// IsModelLoaded reports whether a model is being served.
func (e *Engine) IsModelLoaded() bool {
	return e.model.Load() != nil
}

// DefaultTopN returns the configured list size for callers without one.
func (e *Engine) DefaultTopN() int {
	return e.config.Limits.DefaultTopN
}

// Recommend returns up to topN items userID has not rated, ordered by
// predicted score descending. Items with equal scores keep the order the
// provider enumerated them in. A valid empty result is an empty slice and a
// nil error.
func (e *Engine) Recommend(ctx context.Context, userID int64, topN int) ([]Prediction, error) {
	return e.RecommendWith(ctx, e.model.Load(), userID, topN)
}

// RecommendWith ranks against model instead of the engine's current one.
// Callers that report model details alongside the list capture the model
// once with Model and pass it here, so both describe the same model.
// A nil model yields ErrModelNotLoaded.
func (e *Engine) RecommendWith(ctx context.Context, model *Model, userID int64, topN int) ([]Prediction, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if model == nil {
		e.errorCount.Add(1)
		return nil, ErrModelNotLoaded
	}
	if topN <= 0 {
		return []Prediction{}, nil
	}

	items, rated, err := e.fetch(ctx, userID)
	if err != nil {
		e.errorCount.Add(1)
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("recommendation lookup failed")
		return nil, err
	}

	candidates := make([]Prediction, 0, len(items))
	coldUser := !model.KnowsUser(userID)
	for _, item := range items {
		if _, seen := rated[item.ItemID]; seen {
			continue
		}
		candidates = append(candidates, Prediction{
			ItemID:         item.ItemID,
			Title:          item.Title,
			Author:         item.Author,
			PredictedScore: model.Predict(userID, item.ItemID),
		})
	}
	if coldUser {
		e.coldStartUsers.Add(1)
	}
	e.candidatesTotal.Add(int64(len(candidates)))

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].PredictedScore > candidates[b].PredictedScore
	})
	if topN < len(candidates) {
		candidates = candidates[:topN]
	}

	elapsed := time.Since(start)
	e.lastLatencyMS.Store(elapsed.Milliseconds())
	e.logger.Debug().
		Int64("user_id", userID).
		Int("top_n", topN).
		Int("returned", len(candidates)).
		Bool("cold_start", coldUser).
		Dur("duration", elapsed).
		Msg("recommendations generated")

	return candidates, nil
}

// fetch reads the catalogue and the user's rated set concurrently under the
// lookup timeout.
func (e *Engine) fetch(ctx context.Context, userID int64) ([]Item, map[string]struct{}, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, e.config.Limits.LookupTimeout)
	defer cancel()

	var (
		items []Item
		rated map[string]struct{}
	)
	g, gctx := errgroup.WithContext(lookupCtx)
	g.Go(func() error {
		var err error
		items, err = e.provider.GetAllItems(gctx)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rated, err = e.provider.GetRatedItemIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("get rated items: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		// The caller going away is not a store failure.
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("recommend: %w", ctx.Err())
		}
		if errors.Is(err, ErrDataSourceUnavailable) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
	}
	return items, rated, nil
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		Requests:        e.requestCount.Load(),
		Errors:          e.errorCount.Load(),
		ColdStartUsers:  e.coldStartUsers.Load(),
		ModelSwaps:      e.modelSwaps.Load(),
		LastLatencyMS:   e.lastLatencyMS.Load(),
		CandidatesTotal: e.candidatesTotal.Load(),
	}
	if m := e.model.Load(); m != nil {
		stats.ModelLoaded = true
		stats.ModelVersion = m.Metadata().Version
	}
	return stats
}
