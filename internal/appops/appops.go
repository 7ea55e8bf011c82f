// Package appops stores per-package app-op modes and journals every change.
package appops

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/audit"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// Mode is the state of an app-op for one package.
type Mode string

const (
	ModeAllowed    Mode = "allowed"
	ModeIgnored    Mode = "ignored"
	ModeErrored    Mode = "errored"
	ModeDefault    Mode = "default"
	ModeForeground Mode = "foreground"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAllowed, ModeIgnored, ModeErrored, ModeDefault, ModeForeground:
		return m, nil
	default:
		return "", fmt.Errorf("unknown app-op mode %q", s)
	}
}

// OpAccessCallAudio lets the holder of the dialer role access call audio.
const OpAccessCallAudio = "android:access_call_audio"

// defaultModes lists ops whose default differs from ModeAllowed.
var defaultModes = map[string]Mode{
	OpAccessCallAudio:                  ModeDefault,
	"android:manage_external_storage":  ModeDefault,
	"android:system_alert_window":      ModeDefault,
	"android:get_usage_stats":          ModeDefault,
	"android:request_install_packages": ModeDefault,
}

// DefaultMode returns the mode an op has when nothing was set.
func DefaultMode(op string) Mode {
	if m, ok := defaultModes[op]; ok {
		return m
	}
	return ModeAllowed
}

type opKey struct {
	user model.UserID
	pkg  string
	op   string
}

// Setting is one explicitly set mode.
type Setting struct {
	User    model.UserID `json:"user"`
	Package string       `json:"package"`
	Op      string       `json:"op"`
	Mode    Mode         `json:"mode"`
}

// Store keeps app-op modes in memory, optionally journaling to an audit log.
type Store struct {
	mu      sync.RWMutex
	modes   map[opKey]Mode
	journal *audit.Log

	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewStore creates an empty in-memory store. journal may be nil.
func NewStore(journal *audit.Log, log *zap.Logger, m *metrics.Metrics) *Store {
	return &Store{
		modes:   make(map[opKey]Mode),
		journal: journal,
		log:     logging.OrNop(log),
		metrics: m,
	}
}

// Restore rebuilds modes from journal entries, typically read with
// audit.Read before the journal is reopened for appending. Entries of
// other kinds are ignored. Restore does not journal.
func (s *Store) Restore(entries []audit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range entries {
		if e.Kind != audit.KindAppOp {
			continue
		}
		mode, err := ParseMode(e.Value)
		if err != nil {
			s.log.Warn("skipping journal entry", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		s.apply(opKey{user: model.UserID(e.User), pkg: e.Package, op: e.Subject}, mode)
		n++
	}
	s.log.Debug("app-op state restored", zap.Int("entries", n))
}

// Mode returns the effective mode of op for a package.
func (s *Store) Mode(user model.UserID, pkg, op string) Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.modes[opKey{user: user, pkg: pkg, op: op}]; ok {
		return m
	}
	return DefaultMode(op)
}

// SetMode sets op for a package and reports whether the effective mode
// changed. Unchanged modes are not journaled.
func (s *Store) SetMode(user model.UserID, pkg, op string, mode Mode) (bool, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return false, err
	}
	key := opKey{user: user, pkg: pkg, op: op}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.modes[key]
	if !ok {
		prev = DefaultMode(op)
	}
	if prev == mode {
		return false, nil
	}

	if s.journal != nil {
		err := s.journal.Record(audit.Entry{
			Kind:     audit.KindAppOp,
			User:     int(user),
			Package:  pkg,
			Subject:  op,
			Value:    string(mode),
			Previous: string(prev),
		})
		if err != nil {
			return false, fmt.Errorf("journal app-op change: %w", err)
		}
	}

	s.apply(key, mode)
	s.metrics.AppOpChanged(op, string(mode))
	s.log.Info("app-op mode changed",
		zap.Int("user", int(user)),
		zap.String("package", pkg),
		zap.String("op", op),
		zap.String("from", string(prev)),
		zap.String("to", string(mode)),
	)
	return true, nil
}

// apply stores mode; callers hold mu or own s exclusively.
func (s *Store) apply(key opKey, mode Mode) {
	if mode == DefaultMode(key.op) {
		delete(s.modes, key)
		return
	}
	s.modes[key] = mode
}

// Settings lists explicitly set modes sorted by user, package, op.
func (s *Store) Settings() []Setting {
	s.mu.RLock()
	out := make([]Setting, 0, len(s.modes))
	for k, m := range s.modes {
		out = append(out, Setting{User: k.user, Package: k.pkg, Op: k.op, Mode: m})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].User != out[j].User {
			return out[i].User < out[j].User
		}
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		return out[i].Op < out[j].Op
	})
	return out
}
