// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"
	"time"
)

// Config holds recommendation engine and trainer configuration.
type Config struct {
	// Scale is the rating interval predictions are bounded to.
	Scale Scale `json:"scale"`

	// Limits bounds request-path work.
	Limits LimitsConfig `json:"limits"`

	// Training controls trainer input selection.
	Training TrainingConfig `json:"training"`
}

// LimitsConfig bounds the request path.
type LimitsConfig struct {
	// DefaultTopN is used by callers that do not pass an explicit size.
	DefaultTopN int `json:"default_top_n"`

	// LookupTimeout bounds the store reads of one Recommend call.
	LookupTimeout time.Duration `json:"lookup_timeout"`
}

// TrainingConfig controls which ratings reach the fitter.
type TrainingConfig struct {
	// Threshold excludes ratings with Score <= Threshold.
	Threshold int `json:"threshold"`

	// Timeout bounds one complete training run.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scale: Scale{Min: 1, Max: 10},
		Limits: LimitsConfig{
			DefaultTopN:   10,
			LookupTimeout: 5 * time.Second,
		},
		Training: TrainingConfig{
			Threshold: 0,
			Timeout:   30 * time.Minute,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !(c.Scale.Min < c.Scale.Max) {
		return fmt.Errorf("scale.min must be below scale.max, got [%v, %v]", c.Scale.Min, c.Scale.Max)
	}
	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.LookupTimeout <= 0 {
		return fmt.Errorf("limits.lookup_timeout must be positive, got %v", c.Limits.LookupTimeout)
	}
	if c.Training.Threshold < 0 {
		return fmt.Errorf("training.threshold must be non-negative, got %d", c.Training.Threshold)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
