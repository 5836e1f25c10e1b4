// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage matches the production major version.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort = "5432/tcp"
)

// PostgresContainer is a running Postgres server for integration tests.
type PostgresContainer struct {
	testcontainers.Container

	// URL is a postgres:// connection URL reachable from the test process.
	URL string
}

// PostgresOption configures the Postgres container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	database     string
	user         string
	password     string
	startTimeout time.Duration
}

// WithPostgresImage sets a custom Postgres Docker image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithDatabase sets the database name created at startup.
func WithDatabase(name string) PostgresOption {
	return func(c *postgresConfig) {
		c.database = name
	}
}

// WithStartTimeout sets the timeout for waiting for Postgres to accept
// connections.
func WithStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer creates and starts a Postgres container.
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg)
//
//	db, err := database.New(&config.DatabaseConfig{Driver: config.DriverPostgres, URL: pg.URL})
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		database:     "shelfwise",
		user:         "shelfwise",
		password:     "shelfwise",
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_DB":       cfg.database,
			"POSTGRES_USER":     cfg.user,
			"POSTGRES_PASSWORD": cfg.password,
		},
		// The entrypoint restarts the server once after initdb, so the ready
		// line appears twice before the final server is up.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		URL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.user, cfg.password, host, port.Port(), cfg.database),
	}, nil
}

// StartPostgres starts a container for the duration of t, skipping the test
// when Docker is unavailable.
func StartPostgres(t *testing.T, opts ...PostgresOption) *PostgresContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	pg, err := NewPostgresContainer(ctx, opts...)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, ctx, pg) })
	return pg
}
