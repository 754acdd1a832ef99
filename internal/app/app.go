// Package app wires configuration, storage, content and the tracker
// together for the dianafit binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/dianafit/internal/config"
	"github.com/claude/dianafit/internal/content"
	"github.com/claude/dianafit/internal/metrics"
	"github.com/claude/dianafit/internal/storage"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/claude/dianafit/internal/workout"
)

// Options carry the per-binary parts of the wiring.
type Options struct {
	Metrics *metrics.Manager
	// Hooks receive detailed-session timer ticks.
	Hooks workout.Hooks
}

// App is an opened data directory with a tracker on top.
type App struct {
	Config  *config.Config
	Content *content.Provider
	Store   storage.Store
	Repo    *storage.Repository
	Tracker *tracker.Tracker

	log       *slog.Logger
	lock      *storage.Lock
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// Open locks the data directory (sqlite only), opens the store and content
// and builds the tracker. The content override file, if any, is watched
// until Close.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, log: log}

	if cfg.Storage.Driver == storage.DriverSQLite {
		lock, err := storage.AcquireLock(cfg.Storage.LockPath())
		if errors.Is(err, storage.ErrLocked) {
			return nil, fmt.Errorf("data directory %s is in use by another dianafit process: %w", cfg.Storage.Path, err)
		}
		if err != nil {
			return nil, err
		}
		a.lock = lock
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Database.DSN(),
	})
	if err != nil {
		a.releaseLock()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	a.Store = store
	log.Debug("storage opened", "driver", cfg.Storage.Driver)

	provider, err := content.Open(cfg.Content.Path)
	if err != nil {
		store.Close()
		a.releaseLock()
		return nil, fmt.Errorf("loading content: %w", err)
	}
	a.Content = provider

	if cfg.Content.Path != "" {
		watchCtx, cancel := context.WithCancel(context.Background())
		a.stopWatch = cancel
		a.watchDone = make(chan struct{})
		go func() {
			defer close(a.watchDone)
			if err := provider.Watch(watchCtx, cfg.Content.Path, log); err != nil {
				log.Warn("content watcher stopped", "error", err)
			}
		}()
	}

	a.Repo = storage.NewRepository(store, log)
	a.Tracker = tracker.New(ctx, tracker.Options{
		Content:         provider,
		Repo:            a.Repo,
		Metrics:         opts.Metrics,
		Log:             log,
		RestDuration:    cfg.Workout.RestDuration(),
		DefaultViewMode: cfg.Workout.ViewMode,
		Hooks:           opts.Hooks,
	})
	return a, nil
}

// Close stops the session timers and the content watcher, closes the store
// and releases the lock.
func (a *App) Close() {
	a.Tracker.Close()
	if a.stopWatch != nil {
		a.stopWatch()
		<-a.watchDone
	}
	if err := a.Store.Close(); err != nil {
		a.log.Warn("closing storage", "error", err)
	}
	a.releaseLock()
}

func (a *App) releaseLock() {
	if a.lock == nil {
		return
	}
	if err := a.lock.Release(); err != nil {
		a.log.Warn("releasing lock", "error", err)
	}
	a.lock = nil
}
