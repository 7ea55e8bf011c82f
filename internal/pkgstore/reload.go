package pkgstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
)

// DefaultDebounce is how long the reloader waits after the last write.
const DefaultDebounce = 500 * time.Millisecond

// Reloader watches a catalog file and swaps it into a Store on change.
type Reloader struct {
	watcher  *fsnotify.Watcher
	store    *Store
	path     string
	debounce time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewReloader creates a file watcher for the catalog at path.
// The parent directory is watched so that editors replacing the file
// atomically (rename over) are still observed.
func NewReloader(store *Store, path string, log *zap.Logger, m *metrics.Metrics) (*Reloader, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if _, err := os.Stat(filepath.Dir(abs)); err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	return &Reloader{
		watcher:  watcher,
		store:    store,
		path:     abs,
		debounce: DefaultDebounce,
		log:      logging.OrNop(log),
		metrics:  m,
	}, nil
}

// SetDebounce overrides the debounce interval. Call before Run.
func (r *Reloader) SetDebounce(d time.Duration) {
	r.debounce = d
}

// Reload loads the catalog from disk and replaces the store snapshot.
// On error the previous snapshot stays in place.
func (r *Reloader) Reload() error {
	cat, err := catalog.Load(r.path)
	if err != nil {
		r.metrics.Reloaded("error")
		return err
	}
	if cat.Hash() == r.store.Catalog().Hash() {
		r.metrics.Reloaded("unchanged")
		return nil
	}
	n := r.store.Replace(cat)
	r.metrics.Reloaded("ok")
	r.log.Info("catalog reloaded", zap.String("path", r.path), zap.String("hash", cat.Hash()), zap.Int("notified", n))
	return nil
}

// Close releases the watcher. Run closes it on return; call Close only
// when Run is never started.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Single timer reset on each event; initialized stopped.
	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				timer.Reset(r.debounce)
			}

		case <-timer.C:
			if err := r.Reload(); err != nil {
				r.log.Warn("hot-reload failed", zap.String("path", r.path), zap.Error(err))
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("file watcher error", zap.Error(err))
		}
	}
}
