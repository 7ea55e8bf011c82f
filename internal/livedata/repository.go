package livedata

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

type entry struct {
	holder *PackagePermissions
	refs   int
}

// Repository hands out at most one live PackagePermissions per
// (package, user) and drops it when the last reference is released.
type Repository struct {
	src Source
	log *zap.Logger
	m   *metrics.Metrics

	mu      sync.Mutex
	entries map[model.Key]*entry
}

// NewRepository creates an empty repository reading from src.
func NewRepository(src Source, log *zap.Logger, m *metrics.Metrics) *Repository {
	return &Repository{
		src:     src,
		log:     logging.OrNop(log),
		m:       m,
		entries: make(map[model.Key]*entry),
	}
}

// Acquire returns the holder for pkg and user, creating and starting it if
// needed. Callers must call release once they no longer need the holder.
func (r *Repository) Acquire(pkg string, user model.UserID) (holder *PackagePermissions, release func()) {
	key := model.Key{Package: pkg, User: user}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{holder: newPackagePermissions(key, r.src, r.log, r.m)}
		r.entries[key] = e
		// Starting under the lock keeps a concurrent Acquire of the same
		// key from observing a holder with no value yet.
		e.holder.start()
		r.m.HolderAdded()
		r.log.Debug("holder created", zap.Stringer("key", key))
	}
	e.refs++
	r.mu.Unlock()

	var once sync.Once
	return e.holder, func() {
		once.Do(func() { r.release(key, e) })
	}
}

func (r *Repository) release(key model.Key, e *entry) {
	r.mu.Lock()
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	if r.entries[key] == e {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	e.holder.stop()
	r.m.HolderRemoved()
	r.log.Debug("holder released", zap.Stringer("key", key))
}

// Get returns the live holder for a key without taking a reference.
func (r *Repository) Get(pkg string, user model.UserID) (*PackagePermissions, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[model.Key{Package: pkg, User: user}]
	if !ok {
		return nil, false
	}
	return e.holder, true
}

// Len reports the number of live holders.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
