// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// MatrixFactorizationConfig contains configuration for biased matrix
// factorization.
type MatrixFactorizationConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	// Default: 50.
	NumFactors int

	// NumEpochs is the number of full passes over the training set.
	// Default: 20.
	NumEpochs int

	// LearningRate is the SGD step size.
	// Default: 0.005.
	LearningRate float64

	// Regularization is the L2 penalty applied to biases and factors.
	// Default: 0.02.
	Regularization float64

	// InitStdDev is the standard deviation of the normal distribution the
	// factors are initialized from (mean 0).
	// Default: 0.1.
	InitStdDev float64

	// Seed for reproducible training.
	// If 0, uses a default seed.
	Seed int64
}

// DefaultMatrixFactorizationConfig returns the default configuration.
func DefaultMatrixFactorizationConfig() MatrixFactorizationConfig {
	return MatrixFactorizationConfig{
		NumFactors:     50,
		NumEpochs:      20,
		LearningRate:   0.005,
		Regularization: 0.02,
		InitStdDev:     0.1,
		Seed:           42,
	}
}

// MatrixFactorization fits explicit ratings with the bias-augmented model
//
//	r(u,i) ~ mu + bu[u] + bi[i] + pu[u] . qi[i]
//
// by stochastic gradient descent on the regularized squared error. Each epoch
// visits every rating once in a seeded random order, so identical inputs and
// seed produce identical parameters.
//
// Per-sample update with e = r - pred:
//
//	bu += lr * (e - reg*bu)
//	bi += lr * (e - reg*bi)
//	pu += lr * (e*qi - reg*pu)
//	qi += lr * (e*pu - reg*qi)
//
// where the factor updates use the pre-update values of pu and qi.
type MatrixFactorization struct {
	config MatrixFactorizationConfig
}

// NewMatrixFactorization creates a fitter, applying defaults for zero fields.
func NewMatrixFactorization(cfg MatrixFactorizationConfig) *MatrixFactorization {
	defaults := DefaultMatrixFactorizationConfig()
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = defaults.NumFactors
	}
	if cfg.NumEpochs <= 0 {
		cfg.NumEpochs = defaults.NumEpochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = defaults.Regularization
	}
	if cfg.InitStdDev <= 0 {
		cfg.InitStdDev = defaults.InitStdDev
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaults.Seed
	}
	return &MatrixFactorization{config: cfg}
}

// Name returns the algorithm identifier.
func (m *MatrixFactorization) Name() string {
	return "biased_mf"
}

// Config returns the effective configuration.
func (m *MatrixFactorization) Config() MatrixFactorizationConfig {
	return m.config
}

type sample struct {
	user  int
	item  int
	score float64
}

// Fit implements recommend.Fitter.
func (m *MatrixFactorization) Fit(ctx context.Context, ratings []recommend.Rating, scale recommend.Scale) (*storage.ModelState, error) {
	if len(ratings) == 0 {
		return nil, recommend.ErrEmptyTrainingSet
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	cfg := m.config
	state := &storage.ModelState{
		FactorCount:    cfg.NumFactors,
		EpochCount:     cfg.NumEpochs,
		LearningRate:   cfg.LearningRate,
		Regularization: cfg.Regularization,
		ScaleMin:       scale.Min,
		ScaleMax:       scale.Max,
	}

	// Index users and items in first-seen order.
	userIndex := make(map[int64]int)
	itemIndex := make(map[string]int)
	samples := make([]sample, 0, len(ratings))
	var sum float64
	for _, r := range ratings {
		u, ok := userIndex[r.UserID]
		if !ok {
			u = len(state.UserIDs)
			userIndex[r.UserID] = u
			state.UserIDs = append(state.UserIDs, r.UserID)
		}
		i, ok := itemIndex[r.ItemID]
		if !ok {
			i = len(state.ItemIDs)
			itemIndex[r.ItemID] = i
			state.ItemIDs = append(state.ItemIDs, r.ItemID)
		}
		score := float64(r.Score)
		samples = append(samples, sample{user: u, item: i, score: score})
		sum += score
	}
	state.GlobalMean = sum / float64(len(samples))

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	numUsers, numItems, k := len(state.UserIDs), len(state.ItemIDs), cfg.NumFactors
	state.UserBias = make([]float64, numUsers)
	state.ItemBias = make([]float64, numItems)
	state.UserFactors = initFactors(rng, numUsers, k, cfg.InitStdDev)
	state.ItemFactors = initFactors(rng, numItems, k, cfg.InitStdDev)

	lr, reg := cfg.LearningRate, cfg.Regularization
	mu := state.GlobalMean
	bu, bi := state.UserBias, state.ItemBias
	pu, qi := state.UserFactors, state.ItemFactors

	for epoch := 0; epoch < cfg.NumEpochs; epoch++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		rng.Shuffle(len(samples), func(a, b int) {
			samples[a], samples[b] = samples[b], samples[a]
		})

		for _, s := range samples {
			p, q := pu[s.user], qi[s.item]

			var d float64
			for f := 0; f < k; f++ {
				d += p[f] * q[f]
			}
			e := s.score - (mu + bu[s.user] + bi[s.item] + d)

			bu[s.user] += lr * (e - reg*bu[s.user])
			bi[s.item] += lr * (e - reg*bi[s.item])

			for f := 0; f < k; f++ {
				pf, qf := p[f], q[f]
				p[f] += lr * (e*qf - reg*pf)
				q[f] += lr * (e*pf - reg*qf)
			}
		}
	}

	if err := checkFinite(state); err != nil {
		return nil, err
	}
	return state, nil
}

func initFactors(rng *rand.Rand, rows, k int, std float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, k)
		for f := range out[r] {
			out[r][f] = rng.NormFloat64() * std
		}
	}
	return out
}

// checkFinite rejects parameters that diverged during training.
func checkFinite(s *storage.ModelState) error {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	for k, v := range s.UserBias {
		if bad(v) {
			return fmt.Errorf("training diverged: user %d bias is %v", s.UserIDs[k], v)
		}
		for _, f := range s.UserFactors[k] {
			if bad(f) {
				return fmt.Errorf("training diverged: user %d factor is %v", s.UserIDs[k], f)
			}
		}
	}
	for k, v := range s.ItemBias {
		if bad(v) {
			return fmt.Errorf("training diverged: item %q bias is %v", s.ItemIDs[k], v)
		}
		for _, f := range s.ItemFactors[k] {
			if bad(f) {
				return fmt.Errorf("training diverged: item %q factor is %v", s.ItemIDs[k], f)
			}
		}
	}
	return nil
}
