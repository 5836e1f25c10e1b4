// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// testEnv points configuration at a throwaway DuckDB file and model dir.
type testEnv struct {
	dbPath   string
	modelDir string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dbPath:   filepath.Join(dir, "shelfwise.duckdb"),
		modelDir: filepath.Join(dir, "models"),
	}
	t.Setenv("DATABASE_DRIVER", config.DriverDuckDB)
	t.Setenv("DUCKDB_PATH", env.dbPath)
	t.Setenv("DUCKDB_MAX_MEMORY", "256MB")
	t.Setenv("MODEL_DIR", env.modelDir)
	t.Setenv("LOG_LEVEL", "error")
	return env
}

// seed writes a small catalog with ratings on a 1..10 scale.
func (e testEnv) seed(t *testing.T) {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Driver:       config.DriverDuckDB,
		Path:         e.dbPath,
		MaxMemory:    "256MB",
		MaxOpenConns: 2,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		if err := db.CreateUser(ctx, &models.User{UserID: id}); err != nil {
			t.Fatalf("CreateUser(%d) error = %v", id, err)
		}
	}
	for _, isbn := range []string{"A", "B", "C", "D"} {
		if err := db.CreateBook(ctx, &models.Book{ISBN: isbn, Title: "Book " + isbn}); err != nil {
			t.Fatalf("CreateBook(%s) error = %v", isbn, err)
		}
	}
	ratings := []models.Preference{
		{UserID: 1, ISBN: "A", Rating: 9},
		{UserID: 1, ISBN: "B", Rating: 7},
		{UserID: 2, ISBN: "A", Rating: 8},
		{UserID: 2, ISBN: "C", Rating: 4},
		{UserID: 3, ISBN: "B", Rating: 6},
		{UserID: 3, ISBN: "D", Rating: 0}, // implicit, excluded from training
	}
	for i := range ratings {
		if err := db.UpsertRating(ctx, &ratings[i]); err != nil {
			t.Fatalf("UpsertRating(%+v) error = %v", ratings[i], err)
		}
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return v
}

func TestTrainCommand(t *testing.T) {
	env := setupEnv(t)
	env.seed(t)

	out, err := runCmd(t, "train", "--factors", "4", "--epochs", "5", "--seed", "7")
	if err != nil {
		t.Fatalf("train error = %v", err)
	}
	report := decode[trainReport](t, out)
	if report.Metadata.Version != 1 {
		t.Errorf("Version = %d, want 1", report.Metadata.Version)
	}
	if report.Metadata.FactorCount != 4 || report.Metadata.EpochCount != 5 {
		t.Errorf("factors/epochs = %d/%d, want 4/5", report.Metadata.FactorCount, report.Metadata.EpochCount)
	}
	if report.Metadata.RatingCount != 5 {
		t.Errorf("RatingCount = %d, want 5", report.Metadata.RatingCount)
	}
	if report.Read != 5 {
		t.Errorf("Read = %d, want 5", report.Read)
	}
	if _, err := os.Stat(report.Path); err != nil {
		t.Errorf("artifact %s not written: %v", report.Path, err)
	}
	if !strings.HasPrefix(report.Path, env.modelDir) {
		t.Errorf("Path = %q, want under %q", report.Path, env.modelDir)
	}

	// The artifact loads into a servable model.
	model, err := recommend.LoadModelFile(report.Path)
	if err != nil {
		t.Fatalf("LoadModelFile() error = %v", err)
	}
	if !model.KnowsUser(1) || model.KnowsUser(99) {
		t.Error("model user table does not match the training set")
	}

	out, err = runCmd(t, "train", "--epochs", "2")
	if err != nil {
		t.Fatalf("second train error = %v", err)
	}
	if got := decode[trainReport](t, out).Metadata.Version; got != 2 {
		t.Errorf("second Version = %d, want 2", got)
	}
}

func TestTrainCommand_Errors(t *testing.T) {
	t.Run("empty store exits with error", func(t *testing.T) {
		env := setupEnv(t)
		_, err := runCmd(t, "train")
		if !errors.Is(err, recommend.ErrEmptyTrainingSet) {
			t.Errorf("train error = %v, want ErrEmptyTrainingSet", err)
		}
		entries, _ := os.ReadDir(env.modelDir)
		if len(entries) != 0 {
			t.Errorf("model dir has %d entries after failed run, want 0", len(entries))
		}
	})

	t.Run("invalid override is rejected", func(t *testing.T) {
		setupEnv(t)
		_, err := runCmd(t, "train", "--epochs", "0")
		if err == nil || !strings.Contains(err.Error(), "MF_EPOCHS") {
			t.Errorf("train --epochs 0 error = %v, want MF_EPOCHS validation error", err)
		}
	})

	t.Run("threshold above every rating", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t)
		_, err := runCmd(t, "train", "--threshold", "9")
		if !errors.Is(err, recommend.ErrEmptyTrainingSet) {
			t.Errorf("train --threshold 9 error = %v, want ErrEmptyTrainingSet", err)
		}
	})
}

func publishVersions(t *testing.T, dir string, n int) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(dir, "latent_factor")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	state := &storage.ModelState{
		FactorCount: 1,
		EpochCount:  1,
		ScaleMin:    1,
		ScaleMax:    10,
		GlobalMean:  5,
		UserIDs:     []int64{1},
		UserBias:    []float64{0},
		UserFactors: [][]float64{{0.1}},
		ItemIDs:     []string{"A"},
		ItemBias:    []float64{0},
		ItemFactors: [][]float64{{0.1}},
	}
	for i := 0; i < n; i++ {
		if _, err := store.Publish(state, storage.Metadata{RatingCount: 1}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	return store
}

func TestInspectCommand(t *testing.T) {
	env := setupEnv(t)
	store := publishVersions(t, env.modelDir, 2)

	out, err := runCmd(t, "inspect", store.Path(1))
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if meta := decode[storage.Metadata](t, out); meta.Version != 1 || meta.Checksum == "" {
		t.Errorf("inspect v1 = %+v, want version 1 with checksum", meta)
	}

	out, err = runCmd(t, "inspect")
	if err != nil {
		t.Fatalf("inspect latest error = %v", err)
	}
	if meta := decode[storage.Metadata](t, out); meta.Version != 2 {
		t.Errorf("inspect latest Version = %d, want 2", meta.Version)
	}

	if _, err := runCmd(t, "inspect", filepath.Join(env.modelDir, "nope_v1.gob.gz")); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("inspect missing error = %v, want ErrModelNotFound", err)
	}
}

func TestInspectCommand_EmptyDir(t *testing.T) {
	setupEnv(t)
	if _, err := runCmd(t, "inspect"); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("inspect on empty dir error = %v, want ErrModelNotFound", err)
	}
}

func TestListCommand(t *testing.T) {
	env := setupEnv(t)

	out, err := runCmd(t, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if metas := decode[[]storage.Metadata](t, out); len(metas) != 0 {
		t.Errorf("list on empty dir = %d entries, want 0", len(metas))
	}

	publishVersions(t, env.modelDir, 3)
	out, err = runCmd(t, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	metas := decode[[]storage.Metadata](t, out)
	if len(metas) != 3 || metas[0].Version != 3 || metas[2].Version != 1 {
		t.Errorf("list = %+v, want versions 3,2,1", metas)
	}
}

func TestPruneCommand(t *testing.T) {
	env := setupEnv(t)
	publishVersions(t, env.modelDir, 4)

	out, err := runCmd(t, "prune", "--keep", "2")
	if err != nil {
		t.Fatalf("prune error = %v", err)
	}
	result := decode[struct {
		Kept     int   `json:"kept"`
		Removed  int   `json:"removed"`
		Versions []int `json:"versions"`
	}](t, out)
	if result.Removed != 2 || result.Kept != 2 {
		t.Errorf("prune = %+v, want 2 removed and 2 kept", result)
	}
	if len(result.Versions) != 2 || result.Versions[0] != 3 || result.Versions[1] != 4 {
		t.Errorf("remaining versions = %v, want [3 4]", result.Versions)
	}

	if _, err := runCmd(t, "prune", "--keep", "0"); err == nil {
		t.Error("prune --keep 0 error = nil, want error")
	}
}

func TestModelDirFlagOverridesConfig(t *testing.T) {
	setupEnv(t)
	other := t.TempDir()
	publishVersions(t, other, 1)

	out, err := runCmd(t, "--model-dir", other, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if metas := decode[[]storage.Metadata](t, out); len(metas) != 1 {
		t.Errorf("list --model-dir = %d entries, want 1", len(metas))
	}
}
