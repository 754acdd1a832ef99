package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Provider hands out the current catalog and can swap it when an override
// file changes.
type Provider struct {
	current atomic.Pointer[Catalog]
}

// NewProvider returns a provider serving c.
func NewProvider(c *Catalog) *Provider {
	p := &Provider{}
	p.current.Store(c)
	return p
}

// Open returns a provider for the catalog at path, or for the embedded
// catalog when path is empty.
func Open(path string) (*Provider, error) {
	if path == "" {
		return NewProvider(Default()), nil
	}
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewProvider(c), nil
}

// Catalog returns the catalog currently in use.
func (p *Provider) Catalog() *Catalog {
	return p.current.Load()
}

// Watch reloads the catalog whenever path is written or replaced, until ctx
// is cancelled. A file that fails to parse is logged and the previous
// catalog stays in place.
func (p *Provider) Watch(ctx context.Context, path string, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating content watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			c, err := LoadFile(path)
			if err != nil {
				log.Warn("content reload failed, keeping previous catalog", "path", path, "error", err)
				continue
			}
			p.current.Store(c)
			log.Info("content reloaded", "path", path, "plans", len(c.plans), "recipes", len(c.recipes))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("content watcher error", "error", err)
		}
	}
}
