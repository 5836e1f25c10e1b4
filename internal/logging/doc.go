// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package logging provides centralized zerolog-based structured logging for
// Shelfwise.
//
// # Overview
//
// The package provides:
//   - A process-wide zerolog logger configured once from internal/config
//   - JSON output for production and console output for development
//   - Request and correlation IDs carried through context.Context
//   - An slog.Handler adapter so the Suture supervisor tree logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(ctx).Warn().Err(err).Int64("user_id", id).Msg("lookup failed")
//
// Components take a zerolog.Logger in their constructors. Call sites that
// build components use WithComponent:
//
//	engine, err := recommend.NewEngine(cfg, db, logging.WithComponent("recommend"))
//
// # Configuration
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
package logging
