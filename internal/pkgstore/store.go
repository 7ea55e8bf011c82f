// Package pkgstore serves the live package-manager snapshot: permission
// lookups, package descriptors and per-package change notification.
package pkgstore

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

type subscription struct {
	key model.Key
	fn  func()
}

// Store holds the current catalog and notifies subscribers when the
// package they watch changes.
type Store struct {
	mu      sync.RWMutex
	current *catalog.Catalog
	subs    map[uint64]subscription
	nextID  uint64

	log     *zap.Logger
	metrics *metrics.Metrics
}

// New creates a store serving cat. A nil catalog starts empty.
func New(cat *catalog.Catalog, log *zap.Logger, m *metrics.Metrics) *Store {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Store{
		current: cat,
		subs:    make(map[uint64]subscription),
		log:     logging.OrNop(log),
		metrics: m,
	}
}

// Catalog returns the current snapshot.
func (s *Store) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Permission looks up a permission definition in the current snapshot.
func (s *Store) Permission(name string) (model.PermissionInfo, bool) {
	return s.Catalog().Permission(name)
}

// Package returns the descriptor of name for user.
func (s *Store) Package(name string, user model.UserID) (model.PackageInfo, bool) {
	return s.Catalog().Package(model.Key{Package: name, User: user})
}

// Packages lists packages installed for user.
func (s *Store) Packages(user model.UserID) []model.PackageInfo {
	return s.Catalog().Packages(user)
}

// Subscribe registers fn to run whenever the package under key changes
// (installed, updated, uninstalled) or the permission definitions change.
// The returned cancel func is idempotent.
func (s *Store) Subscribe(key model.Key, fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscription{key: key, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers reports the number of active subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Replace swaps in a new snapshot and notifies affected subscribers.
// Callbacks run on the caller's goroutine after the lock is released.
// It returns the number of callbacks invoked.
func (s *Store) Replace(next *catalog.Catalog) int {
	if next == nil {
		next = catalog.Empty()
	}

	s.mu.Lock()
	prev := s.current
	s.current = next

	allChanged := !prev.SamePermissions(next)
	var pending []func()
	for _, sub := range s.subs {
		if allChanged || packageChanged(prev, next, sub.key) {
			pending = append(pending, sub.fn)
		}
	}
	s.mu.Unlock()

	s.log.Debug("catalog replaced",
		zap.String("hash", next.Hash()),
		zap.Bool("permissions_changed", allChanged),
		zap.Int("notified", len(pending)),
	)

	for _, fn := range pending {
		fn()
	}
	s.metrics.Notified(len(pending))
	return len(pending)
}

func packageChanged(prev, next *catalog.Catalog, key model.Key) bool {
	a, hadA := prev.Package(key)
	b, hasB := next.Package(key)
	if hadA != hasB {
		return true
	}
	return hadA && !a.Equal(b)
}
