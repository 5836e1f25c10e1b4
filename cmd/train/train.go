// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

type trainOptions struct {
	factors        int
	epochs         int
	learningRate   float64
	regularization float64
	initStdDev     float64
	seed           int64
	threshold      int
	timeout        time.Duration
	keep           int
	noPrune        bool
}

// trainReport is printed to stdout after a successful run.
type trainReport struct {
	Path       string           `json:"path"`
	Metadata   storage.Metadata `json:"metadata"`
	Read       int              `json:"ratings_read"`
	OutOfScale int              `json:"ratings_out_of_scale"`
	Duplicates int              `json:"ratings_duplicated"`
	Pruned     int              `json:"versions_pruned"`
}

func newTrainCmd(a *app) *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a model from the rating store and publish it",
		Long: `Reads every rating above the threshold, fits the biased matrix
factorization model and publishes it as the next version in the model
directory. The server picks it up without a restart.

Examples:
  shelfwise-train train
  shelfwise-train train --factors 64 --epochs 30 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.train(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.factors, "factors", 0, "latent factors (default MF_FACTORS)")
	f.IntVar(&opts.epochs, "epochs", 0, "training epochs (default MF_EPOCHS)")
	f.Float64Var(&opts.learningRate, "learning-rate", 0, "SGD learning rate (default MF_LEARNING_RATE)")
	f.Float64Var(&opts.regularization, "regularization", 0, "L2 regularization (default MF_REGULARIZATION)")
	f.Float64Var(&opts.initStdDev, "init-std-dev", 0, "factor initialization std dev (default MF_INIT_STD_DEV)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (default MF_SEED)")
	f.IntVar(&opts.threshold, "threshold", 0, "train on ratings strictly above this value (default RATING_THRESHOLD)")
	f.DurationVar(&opts.timeout, "timeout", 0, "abort training after this long (default TRAINING_TIMEOUT)")
	f.IntVar(&opts.keep, "keep", 0, "versions to keep after publishing (default MODEL_KEEP_VERSIONS)")
	f.BoolVar(&opts.noPrune, "no-prune", false, "keep every published version")
	return cmd
}

// applyOverrides copies explicitly set flags onto the loaded configuration.
func (a *app) applyOverrides(cmd *cobra.Command, opts *trainOptions) error {
	t := &a.cfg.Training
	f := cmd.Flags()
	if f.Changed("factors") {
		t.Factors = opts.factors
	}
	if f.Changed("epochs") {
		t.Epochs = opts.epochs
	}
	if f.Changed("learning-rate") {
		t.LearningRate = opts.learningRate
	}
	if f.Changed("regularization") {
		t.Regularization = opts.regularization
	}
	if f.Changed("init-std-dev") {
		t.InitStdDev = opts.initStdDev
	}
	if f.Changed("seed") {
		t.Seed = opts.seed
	}
	if f.Changed("threshold") {
		t.Threshold = opts.threshold
	}
	if f.Changed("timeout") {
		t.Timeout = opts.timeout
	}
	if f.Changed("keep") {
		a.cfg.Recommend.KeepVersions = opts.keep
	}
	return a.cfg.Validate()
}

func (a *app) train(cmd *cobra.Command, opts *trainOptions) error {
	if err := a.applyOverrides(cmd, opts); err != nil {
		return err
	}
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := a.store()
	if err != nil {
		return err
	}

	trainer, err := recommend.NewTrainer(
		cfg.RecommendConfig(),
		db,
		algorithms.NewMatrixFactorization(cfg.MatrixFactorizationConfig()),
		store,
		logging.Logger(),
	)
	if err != nil {
		return err
	}

	result, err := trainer.Run(ctx)
	if err != nil {
		if errors.Is(err, recommend.ErrEmptyTrainingSet) {
			return fmt.Errorf("nothing to train on: no ratings above %d: %w", cfg.Training.Threshold, err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("training interrupted: %w", err)
		}
		return fmt.Errorf("training failed: %w", err)
	}

	report := trainReport{
		Path:       store.Path(result.Metadata.Version),
		Metadata:   result.Metadata,
		Read:       result.Read,
		OutOfScale: result.OutOfScale,
		Duplicates: result.Duplicates,
	}
	if !opts.noPrune {
		removed, err := store.Prune(cfg.Recommend.KeepVersions)
		if err != nil {
			logging.Warn().Err(err).Msg("pruning old model versions failed")
		}
		report.Pruned = removed
	}

	logging.Info().
		Int("version", result.Metadata.Version).
		Str("path", report.Path).
		Dur("duration", result.Duration).
		Msg("model published")
	return writeJSON(cmd.OutOrStdout(), report)
}
