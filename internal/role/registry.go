package role

import (
	"fmt"
	"sort"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/config"
)

// Registry dispatches role names to roles.
type Registry struct {
	roles map[string]*Role
}

// NewRegistry indexes roles by name.
func NewRegistry(roles ...*Role) (*Registry, error) {
	r := &Registry{roles: make(map[string]*Role, len(roles))}
	for _, role := range roles {
		if role.Name == "" {
			return nil, fmt.Errorf("role without name")
		}
		if _, dup := r.roles[role.Name]; dup {
			return nil, fmt.Errorf("role %q: duplicate definition", role.Name)
		}
		r.roles[role.Name] = role
	}
	return r, nil
}

// BehaviorFor resolves a configured behavior name. An empty name picks the
// built-in behavior of well-known roles.
func BehaviorFor(roleName, behavior string) (Behavior, error) {
	switch behavior {
	case "dialer":
		return DialerBehavior{}, nil
	case "default":
		return DefaultBehavior{}, nil
	case "":
		if roleName == NameDialer {
			return DialerBehavior{}, nil
		}
		return DefaultBehavior{}, nil
	default:
		return nil, fmt.Errorf("unknown behavior %q", behavior)
	}
}

// FromConfig builds a registry from configured roles.
func FromConfig(roles []config.Role) (*Registry, error) {
	out := make([]*Role, 0, len(roles))
	for _, rc := range roles {
		b, err := BehaviorFor(rc.Name, rc.Behavior)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", rc.Name, err)
		}
		out = append(out, &Role{
			Name:           rc.Name,
			DefaultHolders: append([]string(nil), rc.DefaultHolders...),
			Exclusive:      rc.IsExclusive(),
			Behavior:       b,
		})
	}
	return NewRegistry(out...)
}

// Get returns the role named name.
func (r *Registry) Get(name string) (*Role, bool) {
	role, ok := r.roles[name]
	return role, ok
}

// Names lists role names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
