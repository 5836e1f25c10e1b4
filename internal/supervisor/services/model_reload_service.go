// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// ModelIndex lists the published artifacts. Satisfied by *storage.Store.
type ModelIndex interface {
	Dir() string
	Name() string
	Refresh() error
	Latest() (version int, path string, err error)
}

// ModelLoader publishes artifacts for serving. Satisfied by *recommend.Engine.
type ModelLoader interface {
	LoadModel(path string) (*recommend.Model, error)
	Model() *recommend.Model
}

// ModelReloadConfig holds reload timing.
type ModelReloadConfig struct {
	// PollInterval is the fallback rescan period. Default: 1m
	PollInterval time.Duration

	// MinInterval is the minimum gap between reloads triggered by file
	// events. Default: 2s
	MinInterval time.Duration
}

// ModelReloadService swaps newer model artifacts into the engine.
//
// It watches the model directory with fsnotify and rescans on a ticker so
// artifacts copied in by another host or missed events are still picked
// up. Bursts of file events are throttled with a token bucket. A version
// that fails to load is not retried until a newer one appears.
type ModelReloadService struct {
	index  ModelIndex
	loader ModelLoader
	config ModelReloadConfig
	logger zerolog.Logger
	name   string

	trigger chan struct{}

	mu            sync.Mutex
	failedVersion int
}

// NewModelReloadService creates a reload service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelReloadService(index ModelIndex, loader ModelLoader, cfg ModelReloadConfig, logger zerolog.Logger) *ModelReloadService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 2 * time.Second
	}
	return &ModelReloadService{
		index:   index,
		loader:  loader,
		config:  cfg,
		logger:  logger.With().Str("service", "model-reload").Logger(),
		name:    "model-reload",
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests a reload check without waiting for a file event.
// It never blocks; requests made while one is pending are merged.
func (s *ModelReloadService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service.
func (s *ModelReloadService) Serve(ctx context.Context) error {
	var (
		events  <-chan fsnotify.Event
		errs    <-chan error
		watcher *fsnotify.Watcher
	)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn().Err(err).Msg("file watching unavailable, polling only")
	} else {
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(s.index.Dir()); err != nil {
			s.logger.Warn().Err(err).Str("dir", s.index.Dir()).Msg("cannot watch model directory, polling only")
		} else {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	s.logger.Info().
		Str("dir", s.index.Dir()).
		Dur("poll_interval", s.config.PollInterval).
		Bool("watching", events != nil).
		Msg("model reload service starting")

	if _, err := s.ReloadNow(); err != nil {
		s.logger.Warn().Err(err).Msg("initial model check failed")
	}

	limiter := rate.NewLimiter(rate.Every(s.config.MinInterval), 1)
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// pending fires once per throttled burst; nil while nothing is scheduled.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model reload service shutting down")
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !s.isArtifactEvent(ev) || pending != nil {
				continue
			}
			pending = time.After(limiter.Reserve().Delay())

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn().Err(err).Msg("model directory watch error")

		case <-s.trigger:
			if pending == nil {
				pending = time.After(limiter.Reserve().Delay())
			}

		case <-pending:
			pending = nil
			s.reload()

		case <-ticker.C:
			s.reload()
		}
	}
}

func (s *ModelReloadService) reload() {
	if _, err := s.ReloadNow(); err != nil {
		s.logger.Error().Err(err).Msg("model reload failed")
	}
}

// isArtifactEvent reports whether ev concerns a finished artifact of the
// watched model. Temporary files written during an atomic save are ignored.
func (s *ModelReloadService) isArtifactEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Write) {
		return false
	}
	return storage.IsArtifactFile(s.index.Name(), ev.Name)
}

// ReloadNow rescans the directory and loads the newest artifact when it is
// newer than the served model. It reports whether the served model changed.
func (s *ModelReloadService) ReloadNow() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Refresh(); err != nil {
		metrics.RecordModelReload(false, err)
		return false, err
	}
	version, path, err := s.index.Latest()
	if errors.Is(err, storage.ErrModelNotFound) {
		return false, nil
	}
	if err != nil {
		metrics.RecordModelReload(false, err)
		return false, err
	}

	if current := s.loader.Model(); current != nil && current.Metadata().Version >= version {
		metrics.RecordModelReload(false, nil)
		return false, nil
	}
	if version == s.failedVersion {
		return false, nil
	}

	model, err := s.loader.LoadModel(path)
	if err != nil {
		s.failedVersion = version
		metrics.RecordModelReload(false, err)
		return false, err
	}

	info := model.Info()
	metrics.RecordModelReload(true, nil)
	metrics.RecordModelServed(info.Version, info.UserCount, info.ItemCount)
	s.logger.Info().
		Int("version", info.Version).
		Str("run_id", info.RunID).
		Msg("serving new model version")
	return true, nil
}

// String returns the service name for logging.
func (s *ModelReloadService) String() string {
	return s.name
}
