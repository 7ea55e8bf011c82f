// Package livedata keeps the permission groups of installed packages up to
// date as the package-manager snapshot changes.
package livedata

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/grouping"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// Source is the package-manager state a holder reads from. Each
// recomputation reads one catalog snapshot.
type Source interface {
	Catalog() *catalog.Catalog
	Subscribe(key model.Key, fn func()) (cancel func())
}

// Snapshot is one published value of a holder.
// Present is false when the package is not installed for the user.
type Snapshot struct {
	Key     model.Key       `json:"key"`
	Groups  grouping.Groups `json:"groups,omitempty"`
	Present bool            `json:"present"`
	Version uint64          `json:"version"`
}

// PackagePermissions holds the permission groups of one package for one
// user and recomputes them whenever the package changes.
type PackagePermissions struct {
	key model.Key
	src Source
	log *zap.Logger
	m   *metrics.Metrics

	// pubMu is held from recomputation until every observer has seen the
	// result, so observers receive versions in order.
	pubMu sync.Mutex

	mu      sync.Mutex
	version uint64
	stopped bool
	cancel  func()

	value atomic.Pointer[Snapshot]

	obsMu     sync.Mutex
	observers map[uint64]func(Snapshot)
	nextObs   uint64
}

func newPackagePermissions(key model.Key, src Source, log *zap.Logger, m *metrics.Metrics) *PackagePermissions {
	return &PackagePermissions{
		key:       key,
		src:       src,
		log:       logging.OrNop(log).With(zap.Stringer("key", key)),
		m:         m,
		observers: make(map[uint64]func(Snapshot)),
	}
}

// start subscribes to the source and computes the initial value.
func (h *PackagePermissions) start() {
	cancel := h.src.Subscribe(h.key, h.Update)
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()
	h.Update()
}

// stop unsubscribes. Updates that arrive afterwards are discarded.
func (h *PackagePermissions) stop() {
	h.mu.Lock()
	h.stopped = true
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Key returns the (package, user) this holder tracks.
func (h *PackagePermissions) Key() model.Key {
	return h.key
}

// Update recomputes the groups from the current source state and publishes
// the result. The previous value is replaced wholesale. Observers must not
// call Update or Observe from their callback.
func (h *PackagePermissions) Update() {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}

	snap := Snapshot{Key: h.key}
	cat := h.src.Catalog()
	if pkg, ok := cat.Package(h.key); ok {
		snap.Groups = grouping.Compute(pkg, cat)
		snap.Present = true
	}

	prev := h.value.Load()
	if prev != nil && prev.Present == snap.Present && prev.Groups.Equal(snap.Groups) {
		h.mu.Unlock()
		h.m.Recomputed("unchanged")
		return
	}

	h.version++
	snap.Version = h.version
	h.value.Store(&snap)
	h.mu.Unlock()

	if snap.Present {
		h.m.Recomputed("published")
		h.log.Debug("permission groups published", zap.Int("groups", len(snap.Groups)), zap.Uint64("version", snap.Version))
	} else {
		h.m.Recomputed("absent")
		h.log.Debug("package absent", zap.Uint64("version", snap.Version))
	}

	h.notify(snap)
}

// Value returns the latest groups. ok is false when nothing has been
// computed yet or the package is not installed.
func (h *PackagePermissions) Value() (grouping.Groups, bool) {
	snap := h.value.Load()
	if snap == nil || !snap.Present {
		return nil, false
	}
	return snap.Groups.Clone(), true
}

// Snapshot returns the latest published snapshot, if any.
func (h *PackagePermissions) Snapshot() (Snapshot, bool) {
	snap := h.value.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	out := *snap
	out.Groups = snap.Groups.Clone()
	return out, true
}

// Observe calls fn with every published snapshot in version order,
// starting with the current one if it exists.
// The returned cancel func is idempotent.
func (h *PackagePermissions) Observe(fn func(Snapshot)) (cancel func()) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	h.obsMu.Lock()
	id := h.nextObs
	h.nextObs++
	h.observers[id] = fn
	h.obsMu.Unlock()

	if snap, ok := h.Snapshot(); ok {
		fn(snap)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.obsMu.Lock()
			delete(h.observers, id)
			h.obsMu.Unlock()
		})
	}
}

func (h *PackagePermissions) notify(snap Snapshot) {
	h.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(h.observers))
	for _, fn := range h.observers {
		fns = append(fns, fn)
	}
	h.obsMu.Unlock()

	for _, fn := range fns {
		out := snap
		out.Groups = snap.Groups.Clone()
		fn(out)
	}
}
