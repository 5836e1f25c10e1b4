// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// Model is a fitted bias-augmented matrix factorization:
//
//	predicted(u, i) = global_mean + bu[u] + bi[i] + dot(pu[u], qi[i])
//
// A Model is immutable after construction and safe for unlimited concurrent
// readers. Retraining produces a new Model; nothing mutates an existing one.
type Model struct {
	state    *storage.ModelState
	meta     storage.Metadata
	loadedAt time.Time

	userIndex map[int64]int
	itemIndex map[string]int
}

// NewModel wraps a validated parameter set. The state must not be modified
// by the caller afterwards.
//
//nolint:gocritic // meta passed by value is acceptable for construction
func NewModel(state *storage.ModelState, meta storage.Metadata) (*Model, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}

	m := &Model{
		state:     state,
		meta:      meta,
		loadedAt:  time.Now().UTC(),
		userIndex: make(map[int64]int, len(state.UserIDs)),
		itemIndex: make(map[string]int, len(state.ItemIDs)),
	}
	for k, id := range state.UserIDs {
		m.userIndex[id] = k
	}
	for k, id := range state.ItemIDs {
		m.itemIndex[id] = k
	}
	return m, nil
}

// Predict returns the clamped predicted score of userID for itemID.
// Unknown users and items fall back to bias-only estimates and never fail.
func (m *Model) Predict(userID int64, itemID string) float64 {
	s := m.state
	u, knownUser := m.userIndex[userID]
	i, knownItem := m.itemIndex[itemID]

	est := s.GlobalMean
	switch {
	case knownUser && knownItem:
		est += s.UserBias[u] + s.ItemBias[i] + dot(s.UserFactors[u], s.ItemFactors[i])
	case knownItem:
		est += s.ItemBias[i]
	case knownUser:
		est += s.UserBias[u]
	}

	return m.Scale().Clamp(est)
}

func dot(a, b []float64) float64 {
	var sum float64
	for f := range a {
		sum += a[f] * b[f]
	}
	return sum
}

// KnowsUser reports whether userID was part of the training set.
func (m *Model) KnowsUser(userID int64) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// KnowsItem reports whether itemID was part of the training set.
func (m *Model) KnowsItem(itemID string) bool {
	_, ok := m.itemIndex[itemID]
	return ok
}

// Scale returns the rating bounds predictions are clamped to.
func (m *Model) Scale() Scale {
	return Scale{Min: m.state.ScaleMin, Max: m.state.ScaleMax}
}

// GlobalMean returns the mean training rating.
func (m *Model) GlobalMean() float64 {
	return m.state.GlobalMean
}

// Metadata returns the artifact lineage the model was created with.
func (m *Model) Metadata() storage.Metadata {
	return m.meta
}

// Info summarizes the model for status endpoints.
func (m *Model) Info() ModelInfo {
	return ModelInfo{
		Name:        m.meta.Name,
		Version:     m.meta.Version,
		RunID:       m.meta.RunID,
		TrainedAt:   m.meta.TrainedAt,
		LoadedAt:    m.loadedAt,
		FactorCount: m.state.FactorCount,
		EpochCount:  m.state.EpochCount,
		UserCount:   len(m.state.UserIDs),
		ItemCount:   len(m.state.ItemIDs),
		RatingCount: m.meta.RatingCount,
		GlobalMean:  m.state.GlobalMean,
		Scale:       m.Scale(),
		Fingerprint: m.meta.Fingerprint,
	}
}
