package role

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/audit"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/logging"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// Journal values of role entries.
const (
	actionAdd    = "add"
	actionRemove = "remove"
)

type holderKey struct {
	role string
	user model.UserID
}

// Candidate is one installed package as offered for a role.
type Candidate struct {
	Preference
	Confirmation string `json:"confirmation,omitempty"`
	Holder       bool   `json:"holder"`
}

// Status summarizes a role for one user.
type Status struct {
	Role       string       `json:"role"`
	User       model.UserID `json:"user"`
	Available  bool         `json:"available"`
	Visible    bool         `json:"visible"`
	Exclusive  bool         `json:"exclusive"`
	Holders    []string     `json:"holders"`
	Fallback   string       `json:"fallback,omitempty"`
	Candidates []Candidate  `json:"candidates,omitempty"`
}

// Manager tracks role holders and applies behavior side effects.
type Manager struct {
	reg     *Registry
	ctx     *Context
	journal *audit.Log
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	holders map[holderKey][]string
}

// NewManager creates a manager. journal may be nil.
func NewManager(reg *Registry, ctx *Context, journal *audit.Log, log *zap.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		reg:     reg,
		ctx:     ctx,
		journal: journal,
		log:     logging.OrNop(log),
		metrics: m,
		holders: make(map[holderKey][]string),
	}
}

// Registry returns the role registry.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// Restore rebuilds holders from role journal entries without side effects.
func (m *Manager) Restore(entries []audit.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if e.Kind != audit.KindRole {
			continue
		}
		key := holderKey{role: e.Subject, user: model.UserID(e.User)}
		switch e.Value {
		case actionAdd:
			if !contains(m.holders[key], e.Package) {
				m.holders[key] = append(m.holders[key], e.Package)
			}
		case actionRemove:
			m.holders[key] = without(m.holders[key], e.Package)
		}
	}
}

func (m *Manager) role(name string) (*Role, error) {
	r, ok := m.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, name)
	}
	return r, nil
}

// Holders returns the packages holding a role for user.
func (m *Manager) Holders(roleName string, user model.UserID) ([]string, error) {
	if _, err := m.role(roleName); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.holders[holderKey{role: roleName, user: user}]...), nil
}

// Assign makes pkg a holder of the role. The new holder is granted and
// recorded before previous holders of an exclusive role are revoked, so a
// failed grant leaves the current holders in place. Assigning the current
// holder is a no-op.
func (m *Manager) Assign(roleName, pkg string, user model.UserID) error {
	r, err := m.role(roleName)
	if err != nil {
		return err
	}
	if !r.IsAvailableAsUser(user, m.ctx) {
		return fmt.Errorf("%w: %s for user %d", ErrRoleUnavailable, roleName, user)
	}
	if _, ok := m.ctx.Packages.Package(pkg, user); !ok {
		return fmt.Errorf("%w: %s for user %d", ErrPackageNotFound, pkg, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := holderKey{role: roleName, user: user}
	previous := append([]string(nil), m.holders[key]...)
	if contains(previous, pkg) {
		return nil
	}

	if err := r.Grant(pkg, user, m.ctx); err != nil {
		return err
	}
	if err := m.record(roleName, pkg, user, actionAdd); err != nil {
		if rerr := r.Revoke(pkg, user, m.ctx); rerr != nil {
			m.log.Warn("undo grant failed", zap.String("role", roleName), zap.String("package", pkg), zap.Error(rerr))
		}
		return err
	}
	m.holders[key] = append(m.holders[key], pkg)
	m.metrics.RoleChanged(roleName, actionAdd)
	m.log.Info("role holder added", zap.String("role", roleName), zap.String("package", pkg), zap.Int("user", int(user)))

	if r.Exclusive {
		for _, prev := range previous {
			if err := m.removeLocked(r, key, prev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Remove revokes the role from pkg.
func (m *Manager) Remove(roleName, pkg string, user model.UserID) error {
	r, err := m.role(roleName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := holderKey{role: roleName, user: user}
	if !contains(m.holders[key], pkg) {
		return fmt.Errorf("%w: %s %s", ErrNotHolder, pkg, roleName)
	}
	return m.removeLocked(r, key, pkg)
}

// Clear revokes the role from every holder for user.
func (m *Manager) Clear(roleName string, user model.UserID) error {
	r, err := m.role(roleName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := holderKey{role: roleName, user: user}
	for _, pkg := range append([]string(nil), m.holders[key]...) {
		if err := m.removeLocked(r, key, pkg); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) removeLocked(r *Role, key holderKey, pkg string) error {
	if err := r.Revoke(pkg, key.user, m.ctx); err != nil {
		return err
	}
	if err := m.record(r.Name, pkg, key.user, actionRemove); err != nil {
		return err
	}
	m.holders[key] = without(m.holders[key], pkg)
	m.metrics.RoleChanged(r.Name, actionRemove)
	m.log.Info("role holder removed", zap.String("role", r.Name), zap.String("package", pkg), zap.Int("user", int(key.user)))
	return nil
}

func (m *Manager) record(roleName, pkg string, user model.UserID, action string) error {
	if m.journal == nil {
		return nil
	}
	err := m.journal.Record(audit.Entry{
		Kind:    audit.KindRole,
		User:    int(user),
		Package: pkg,
		Subject: roleName,
		Value:   action,
	})
	if err != nil {
		return fmt.Errorf("journal role change: %w", err)
	}
	return nil
}

// Status describes a role for user, including every installed package as
// a candidate.
func (m *Manager) Status(roleName string, user model.UserID) (Status, error) {
	r, err := m.role(roleName)
	if err != nil {
		return Status{}, err
	}
	holders, _ := m.Holders(roleName, user)

	st := Status{
		Role:      roleName,
		User:      user,
		Available: r.IsAvailableAsUser(user, m.ctx),
		Visible:   r.IsVisibleAsUser(user, m.ctx),
		Exclusive: r.Exclusive,
		Holders:   holders,
		Fallback:  r.FallbackHolder(user, m.ctx),
	}
	for _, app := range m.ctx.Packages.Packages(user) {
		st.Candidates = append(st.Candidates, Candidate{
			Preference:   r.PreferenceFor(app, user, m.ctx),
			Confirmation: r.ConfirmationMessage(app.Name, user, m.ctx),
			Holder:       contains(holders, app.Name),
		})
	}
	return st, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
