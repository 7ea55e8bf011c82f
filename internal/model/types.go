package model

import (
	"fmt"
	"strings"
)

// NonRuntimeNormalPerms is the synthetic group key collecting every
// qualifying normal-protection permission of a package.
const NonRuntimeNormalPerms = "nonRuntimeNormalPerms"

// RuntimePermissionsSDK is the first target SDK (Android M) with runtime permissions.
const RuntimePermissionsSDK = 23

// Protection is the base protection level of a permission definition.
type Protection int

const (
	ProtectionNormal    Protection = 0
	ProtectionDangerous Protection = 1
	ProtectionSignature Protection = 2
	ProtectionInternal  Protection = 4
)

// String returns the lowercase name used in catalogs and output.
func (p Protection) String() string {
	switch p {
	case ProtectionNormal:
		return "normal"
	case ProtectionDangerous:
		return "dangerous"
	case ProtectionSignature:
		return "signature"
	case ProtectionInternal:
		return "internal"
	default:
		return fmt.Sprintf("protection(%d)", int(p))
	}
}

// ParseProtection maps a catalog string to a Protection level.
func ParseProtection(s string) (Protection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ProtectionNormal, nil
	case "dangerous":
		return ProtectionDangerous, nil
	case "signature":
		return ProtectionSignature, nil
	case "internal":
		return ProtectionInternal, nil
	default:
		return 0, fmt.Errorf("unknown protection level %q", s)
	}
}

// ProtectionFlags are the modifier bits layered on top of a protection level.
type ProtectionFlags uint32

const (
	ProtectionFlagPrivileged  ProtectionFlags = 0x10
	ProtectionFlagAppOp       ProtectionFlags = 0x40
	ProtectionFlagInstant     ProtectionFlags = 0x1000
	ProtectionFlagRuntimeOnly ProtectionFlags = 0x2000
)

// Has reports whether every bit in f is set.
func (p ProtectionFlags) Has(f ProtectionFlags) bool {
	return p&f == f
}

// InfoFlags describe the install state of a permission definition.
type InfoFlags uint32

const (
	FlagCostsMoney     InfoFlags = 1 << 0
	FlagRemoved        InfoFlags = 1 << 1
	FlagHardRestricted InfoFlags = 1 << 2
	FlagInstalled      InfoFlags = 1 << 30
)

// Has reports whether every bit in f is set.
func (i InfoFlags) Has(f InfoFlags) bool {
	return i&f == f
}

// PermissionInfo describes one declared permission.
type PermissionInfo struct {
	Name            string          `json:"name"`
	Group           string          `json:"group,omitempty"`
	Protection      Protection      `json:"protection"`
	ProtectionFlags ProtectionFlags `json:"protection_flags"`
	Flags           InfoFlags       `json:"flags"`
}

// Installed reports whether the definition is currently present and not removed.
func (p PermissionInfo) Installed() bool {
	return p.Flags.Has(FlagInstalled) && !p.Flags.Has(FlagRemoved)
}

// UserID identifies an Android user profile.
type UserID int

// SystemUser is the primary device user.
const SystemUser UserID = 0

// PackageInfo is the package-manager view of one package for one user.
type PackageInfo struct {
	Name                 string   `json:"name"`
	User                 UserID   `json:"user"`
	TargetSDK            int      `json:"target_sdk"`
	InstantApp           bool     `json:"instant_app"`
	DirectBootAware      bool     `json:"direct_boot_aware"`
	RequestedPermissions []string `json:"requested_permissions"`
}

// Requests reports whether the package asks for the named permission.
func (p PackageInfo) Requests(permission string) bool {
	for _, name := range p.RequestedPermissions {
		if name == permission {
			return true
		}
	}
	return false
}

// Equal compares two descriptors field by field, including permission order.
func (p PackageInfo) Equal(o PackageInfo) bool {
	if p.Name != o.Name || p.User != o.User || p.TargetSDK != o.TargetSDK ||
		p.InstantApp != o.InstantApp || p.DirectBootAware != o.DirectBootAware {
		return false
	}
	if len(p.RequestedPermissions) != len(o.RequestedPermissions) {
		return false
	}
	for i := range p.RequestedPermissions {
		if p.RequestedPermissions[i] != o.RequestedPermissions[i] {
			return false
		}
	}
	return true
}

// Key addresses a package installed for a specific user.
type Key struct {
	Package string `json:"package"`
	User    UserID `json:"user"`
}

// KeyOf returns the key of a package descriptor.
func KeyOf(p PackageInfo) Key {
	return Key{Package: p.Name, User: p.User}
}

// String renders the key as package@user.
func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Package, k.User)
}
