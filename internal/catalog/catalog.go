package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// PermissionEntry is one permission definition as written in the catalog.
type PermissionEntry struct {
	Name        string `yaml:"name"`
	Group       string `yaml:"group,omitempty"`
	Protection  string `yaml:"protection"`
	Instant     bool   `yaml:"instant,omitempty"`
	RuntimeOnly bool   `yaml:"runtime_only,omitempty"`
	AppOp       bool   `yaml:"appop,omitempty"`
	Installed   *bool  `yaml:"installed,omitempty"`
	Removed     bool   `yaml:"removed,omitempty"`
}

// PackageEntry is one installed package as written in the catalog.
type PackageEntry struct {
	Name                 string   `yaml:"name"`
	User                 int      `yaml:"user"`
	TargetSDK            int      `yaml:"target_sdk"`
	InstantApp           bool     `yaml:"instant_app,omitempty"`
	DirectBootAware      bool     `yaml:"direct_boot_aware,omitempty"`
	RequestedPermissions []string `yaml:"requested_permissions"`
}

type file struct {
	Permissions []PermissionEntry `yaml:"permissions"`
	Packages    []PackageEntry    `yaml:"packages"`
}

// Catalog is an immutable snapshot of package-manager state.
type Catalog struct {
	permissions map[string]model.PermissionInfo
	packages    map[model.Key]model.PackageInfo
	hash        string
}

// Empty returns a catalog with no permissions and no packages.
func Empty() *Catalog {
	h := sha256.Sum256(nil)
	return &Catalog{
		permissions: map[string]model.PermissionInfo{},
		packages:    map[model.Key]model.PackageInfo{},
		hash:        "sha256:" + hex.EncodeToString(h[:]),
	}
}

// DefaultPath returns ~/.permctl/catalog.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".permctl", "catalog.yaml"), nil
}

// Load reads a catalog from a YAML file.
// Empty path falls back to ~/.permctl/catalog.yaml.
// A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Empty(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes catalog YAML. The snapshot hash covers the raw bytes.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		permissions: make(map[string]model.PermissionInfo, len(f.Permissions)),
		packages:    make(map[model.Key]model.PackageInfo, len(f.Packages)),
	}

	for i, e := range f.Permissions {
		if e.Name == "" {
			return nil, fmt.Errorf("permission %d: missing name", i)
		}
		if _, dup := c.permissions[e.Name]; dup {
			return nil, fmt.Errorf("permission %q: duplicate definition", e.Name)
		}
		info, err := e.toModel()
		if err != nil {
			return nil, fmt.Errorf("permission %q: %w", e.Name, err)
		}
		c.permissions[e.Name] = info
	}

	for i, e := range f.Packages {
		if e.Name == "" {
			return nil, fmt.Errorf("package %d: missing name", i)
		}
		info := e.toModel()
		key := model.KeyOf(info)
		if _, dup := c.packages[key]; dup {
			return nil, fmt.Errorf("package %s: duplicate entry", key)
		}
		c.packages[key] = info
	}

	h := sha256.Sum256(data)
	c.hash = "sha256:" + hex.EncodeToString(h[:])
	return c, nil
}

func (e PermissionEntry) toModel() (model.PermissionInfo, error) {
	prot, err := model.ParseProtection(e.Protection)
	if err != nil {
		return model.PermissionInfo{}, err
	}

	info := model.PermissionInfo{
		Name:       e.Name,
		Group:      e.Group,
		Protection: prot,
	}
	if e.Instant {
		info.ProtectionFlags |= model.ProtectionFlagInstant
	}
	if e.RuntimeOnly {
		info.ProtectionFlags |= model.ProtectionFlagRuntimeOnly
	}
	if e.AppOp {
		info.ProtectionFlags |= model.ProtectionFlagAppOp
	}
	if e.Installed == nil || *e.Installed {
		info.Flags |= model.FlagInstalled
	}
	if e.Removed {
		info.Flags |= model.FlagRemoved
	}
	return info, nil
}

func (e PackageEntry) toModel() model.PackageInfo {
	return model.PackageInfo{
		Name:                 e.Name,
		User:                 model.UserID(e.User),
		TargetSDK:            e.TargetSDK,
		InstantApp:           e.InstantApp,
		DirectBootAware:      e.DirectBootAware,
		RequestedPermissions: append([]string(nil), e.RequestedPermissions...),
	}
}

// Hash returns "sha256:<hex>" of the bytes the catalog was parsed from.
func (c *Catalog) Hash() string {
	return c.hash
}

// Permission returns the definition of a permission.
func (c *Catalog) Permission(name string) (model.PermissionInfo, bool) {
	p, ok := c.permissions[name]
	return p, ok
}

// Package returns the package installed under key.
func (c *Catalog) Package(key model.Key) (model.PackageInfo, bool) {
	p, ok := c.packages[key]
	return p, ok
}

// Packages lists packages installed for user, sorted by name.
func (c *Catalog) Packages(user model.UserID) []model.PackageInfo {
	var out []model.PackageInfo
	for k, p := range c.packages {
		if k.User == user {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Keys lists every (package, user) pair in the catalog.
func (c *Catalog) Keys() []model.Key {
	keys := make([]model.Key, 0, len(c.packages))
	for k := range c.packages {
		keys = append(keys, k)
	}
	return keys
}

// SamePermissions reports whether both catalogs define identical permissions.
func (c *Catalog) SamePermissions(o *Catalog) bool {
	if len(c.permissions) != len(o.permissions) {
		return false
	}
	for name, p := range c.permissions {
		q, ok := o.permissions[name]
		if !ok || p != q {
			return false
		}
	}
	return true
}

// SampleYAML returns a commented catalog for permctl init.
func SampleYAML() string {
	return `# permctl package catalog
# Generated by: permctl init
#
# permissions: device permission definitions
#   protection: normal | dangerous | signature | internal
#   instant: visible to instant apps
#   runtime_only: hidden from apps targeting SDK < 23
#   installed: defaults to true; removed: defaults to false
# packages: installed packages, one entry per (name, user)
permissions:
  - name: android.permission.INTERNET
    protection: normal
    instant: true
  - name: android.permission.CALL_PHONE
    group: android.permission-group.PHONE
    protection: dangerous
  - name: android.permission.READ_CALL_LOG
    group: android.permission-group.CALL_LOG
    protection: dangerous
  - name: android.permission.CAMERA
    group: android.permission-group.CAMERA
    protection: dangerous
    instant: true
  - name: android.permission.ACCESS_CALL_AUDIO
    protection: signature
    appop: true

packages:
  - name: com.android.dialer
    user: 0
    target_sdk: 34
    direct_boot_aware: true
    requested_permissions:
      - android.permission.CALL_PHONE
      - android.permission.READ_CALL_LOG
      - android.permission.INTERNET
      - android.permission.ACCESS_CALL_AUDIO
  - name: com.example.camera
    user: 0
    target_sdk: 30
    requested_permissions:
      - android.permission.CAMERA
      - android.permission.INTERNET
`
}
