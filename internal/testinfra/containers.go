// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

var (
	dockerOnce      sync.Once
	dockerAvailable bool
)

// SkipIfNoDocker skips t when no Docker daemon answers, so
//
//	go test -tags integration ./internal/database/...
//
// passes on machines without Docker and runs the Postgres store tests where
// it is available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable runs `docker info` once per test binary and caches the
// answer; every Postgres-backed test asks.
func IsDockerAvailable() bool {
	dockerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dockerAvailable = exec.CommandContext(ctx, "docker", "info").Run() == nil
	})
	return dockerAvailable
}

// CleanupContainer terminates container, logging instead of failing when
// termination errors; the test result is already decided by then.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate %T: %v", container, err)
	}
}
