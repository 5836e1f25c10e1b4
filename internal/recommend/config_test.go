// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Scale.Min != 1 || cfg.Scale.Max != 10 {
		t.Errorf("Scale = %+v, want [1, 10]", cfg.Scale)
	}
	if cfg.Limits.DefaultTopN != 10 {
		t.Errorf("DefaultTopN = %d, want 10", cfg.Limits.DefaultTopN)
	}
	if cfg.Limits.LookupTimeout != 5*time.Second {
		t.Errorf("LookupTimeout = %v, want 5s", cfg.Limits.LookupTimeout)
	}
	if cfg.Training.Threshold != 0 {
		t.Errorf("Threshold = %d, want 0", cfg.Training.Threshold)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "inverted scale", modify: func(c *Config) { c.Scale = Scale{Min: 10, Max: 1} }, wantErr: true},
		{name: "degenerate scale", modify: func(c *Config) { c.Scale = Scale{Min: 5, Max: 5} }, wantErr: true},
		{name: "zero default top_n", modify: func(c *Config) { c.Limits.DefaultTopN = 0 }, wantErr: true},
		{name: "zero lookup timeout", modify: func(c *Config) { c.Limits.LookupTimeout = 0 }, wantErr: true},
		{name: "negative threshold", modify: func(c *Config) { c.Training.Threshold = -1 }, wantErr: true},
		{name: "threshold inside scale", modify: func(c *Config) { c.Training.Threshold = 5 }},
		{name: "zero training timeout", modify: func(c *Config) { c.Training.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Limits.DefaultTopN = 99
	clone.Scale.Max = 5

	if cfg.Limits.DefaultTopN != 10 || cfg.Scale.Max != 10 {
		t.Error("modifying the clone changed the original")
	}
}
