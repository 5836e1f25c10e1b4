// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// app carries state shared by the subcommands once configuration is loaded.
type app struct {
	cfg *config.Config

	modelDir  string
	modelName string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "shelfwise-train",
		Short: "Train and manage Shelfwise recommendation models",
		Long: `shelfwise-train fits the latent factor model from the rating store and
manages the versioned artifacts the Shelfwise server loads.

Configuration is read like the server's (.env, config file, environment);
the flags below override it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.modelDir, "model-dir", "", "model artifact directory (default MODEL_DIR)")
	root.PersistentFlags().StringVar(&a.modelName, "model-name", "", "model name (default MODEL_NAME)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(newTrainCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newPruneCmd(a))
	return root
}

// load reads configuration, applies global flag overrides and configures
// logging. Logs go to stderr so stdout stays machine readable.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.modelDir != "" {
		cfg.Recommend.ModelDir = a.modelDir
	}
	if a.modelName != "" {
		cfg.Recommend.ModelName = a.modelName
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	a.cfg = cfg
	return nil
}

func (a *app) store() (*storage.Store, error) {
	store, err := storage.NewStore(a.cfg.Recommend.ModelDir, a.cfg.Recommend.ModelName)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	return store, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
