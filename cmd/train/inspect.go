// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print the metadata of a model artifact as JSON",
		Long: `Prints the metadata of the artifact at path, or of the newest version in
the model directory when path is omitted. The artifact checksum is
verified before anything is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				store, err := a.store()
				if err != nil {
					return err
				}
				if _, path, err = store.Latest(); err != nil {
					return err
				}
			}

			meta, err := storage.Inspect(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			return writeJSON(cmd.OutOrStdout(), meta)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published model versions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			metas, err := store.List()
			if err != nil {
				return err
			}
			if metas == nil {
				metas = []storage.Metadata{}
			}
			return writeJSON(cmd.OutOrStdout(), metas)
		},
	}
}

func newPruneCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest model versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = a.cfg.Recommend.KeepVersions
			}
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1, got %d", keep)
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			removed, err := store.Prune(keep)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"kept":     len(store.Versions()),
				"removed":  removed,
				"versions": store.Versions(),
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "number of newest versions to keep (default MODEL_KEEP_VERSIONS)")
	return cmd
}
