// Package grouping buckets the permissions requested by a package into the
// groups a user is shown: one bucket per dangerous permission group and a
// single synthetic bucket for normal permissions.
package grouping

import (
	"sort"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// Lookup resolves a permission name to its definition.
// A false result means the permission is not defined on the device.
type Lookup interface {
	Permission(name string) (model.PermissionInfo, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(name string) (model.PermissionInfo, bool)

// Permission calls f(name).
func (f LookupFunc) Permission(name string) (model.PermissionInfo, bool) {
	return f(name)
}

// Groups maps a group name to its permissions in request order.
type Groups map[string][]string

// Compute groups the requested permissions of pkg. Checks run in a fixed
// order and the first failing check drops the permission:
//
//  1. undefined permission
//  2. not installed, or removed
//  3. instant app requesting a permission not visible to instant apps
//  4. pre-M target requesting a runtime-only permission
//
// Normal permissions land under model.NonRuntimeNormalPerms. Other
// non-dangerous levels are dropped. Dangerous permissions land under their
// group, or under their own name when they have none. Duplicate requests
// produce duplicate entries.
func Compute(pkg model.PackageInfo, lookup Lookup) Groups {
	groups := make(Groups)

	for _, name := range pkg.RequestedPermissions {
		perm, ok := lookup.Permission(name)
		if !ok {
			continue
		}
		if !perm.Installed() {
			continue
		}
		if pkg.InstantApp && !perm.ProtectionFlags.Has(model.ProtectionFlagInstant) {
			continue
		}
		if pkg.TargetSDK < model.RuntimePermissionsSDK && perm.ProtectionFlags.Has(model.ProtectionFlagRuntimeOnly) {
			continue
		}

		if perm.Protection != model.ProtectionDangerous {
			if perm.Protection == model.ProtectionNormal {
				groups[model.NonRuntimeNormalPerms] = append(groups[model.NonRuntimeNormalPerms], name)
			}
			continue
		}

		group := perm.Group
		if group == "" {
			group = perm.Name
		}
		groups[group] = append(groups[group], name)
	}

	return groups
}

// Names returns the group names sorted, with the normal-permission bucket last.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		if name != model.NonRuntimeNormalPerms {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := g[model.NonRuntimeNormalPerms]; ok {
		names = append(names, model.NonRuntimeNormalPerms)
	}
	return names
}

// Equal reports whether both mappings hold the same keys and lists.
func (g Groups) Equal(o Groups) bool {
	if len(g) != len(o) {
		return false
	}
	for k, v := range g {
		w, ok := o[k]
		if !ok || len(v) != len(w) {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy so callers can publish it safely.
func (g Groups) Clone() Groups {
	out := make(Groups, len(g))
	for k, v := range g {
		out[k] = append([]string(nil), v...)
	}
	return out
}
