// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// RatingStore is the read side of the store used by the recommendation
// engine and the trainer.
type RatingStore interface {
	recommend.ItemProvider
	recommend.RatingSource
}

// BreakerStore wraps a RatingStore with a circuit breaker. While the
// circuit is open, calls fail immediately with an error wrapping
// recommend.ErrDataSourceUnavailable instead of waiting on a dead store.
type BreakerStore struct {
	store RatingStore
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

var _ RatingStore = (*BreakerStore)(nil)

// NewBreakerStore wraps store. With cfg.Enabled false the store is returned
// unwrapped.
func NewBreakerStore(store RatingStore, cfg config.BreakerConfig) RatingStore {
	if !cfg.Enabled {
		return store
	}
	return newBreakerStore(store, cfg)
}

func newBreakerStore(store RatingStore, cfg config.BreakerConfig) *BreakerStore {
	cbName := "rating-store"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}

			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := ratio >= failureRatio

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// Only an unreachable store counts against the circuit. Query
		// errors and caller cancellations do not.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return !errors.Is(err, recommend.ErrDataSourceUnavailable) && !isConnectionError(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerStore{store: store, cb: cb, name: cbName}
}

// State returns the current circuit state as "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// execute wraps a store call with circuit breaker protection
func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Debug().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", recommend.ErrDataSourceUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// castResult type-asserts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// GetAllItems lists candidate items with circuit breaker protection
func (b *BreakerStore) GetAllItems(ctx context.Context) ([]recommend.Item, error) {
	return castResult[[]recommend.Item](b.execute(func() (interface{}, error) {
		return b.store.GetAllItems(ctx)
	}))
}

// GetRatedItemIDs lists a user's rated items with circuit breaker protection
func (b *BreakerStore) GetRatedItemIDs(ctx context.Context, userID int64) (map[string]struct{}, error) {
	return castResult[map[string]struct{}](b.execute(func() (interface{}, error) {
		return b.store.GetRatedItemIDs(ctx, userID)
	}))
}

// GetRatingsAboveThreshold reads training ratings with circuit breaker protection
func (b *BreakerStore) GetRatingsAboveThreshold(ctx context.Context, threshold int) ([]recommend.Rating, error) {
	return castResult[[]recommend.Rating](b.execute(func() (interface{}, error) {
		return b.store.GetRatingsAboveThreshold(ctx, threshold)
	}))
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
