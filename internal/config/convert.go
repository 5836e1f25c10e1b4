// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

// RecommendConfig returns the engine and trainer settings.
func (c *Config) RecommendConfig() *recommend.Config {
	return &recommend.Config{
		Scale: c.Scale(),
		Limits: recommend.LimitsConfig{
			DefaultTopN:   c.Recommend.DefaultTopN,
			LookupTimeout: c.Recommend.LookupTimeout,
		},
		Training: recommend.TrainingConfig{
			Threshold: c.Training.Threshold,
			Timeout:   c.Training.Timeout,
		},
	}
}

// MatrixFactorizationConfig returns the fitter hyperparameters.
func (c *Config) MatrixFactorizationConfig() algorithms.MatrixFactorizationConfig {
	return algorithms.MatrixFactorizationConfig{
		NumFactors:     c.Training.Factors,
		NumEpochs:      c.Training.Epochs,
		LearningRate:   c.Training.LearningRate,
		Regularization: c.Training.Regularization,
		InitStdDev:     c.Training.InitStdDev,
		Seed:           c.Training.Seed,
	}
}

// Scale returns the configured rating scale.
func (c *Config) Scale() recommend.Scale {
	return recommend.Scale{Min: c.Training.ScaleMin, Max: c.Training.ScaleMax}
}
