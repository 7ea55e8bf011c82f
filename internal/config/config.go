// Package config loads the permctl device and role configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Device describes the device-level facts role behaviors depend on.
type Device struct {
	VoiceCapable  bool            `yaml:"voice_capable"`
	SystemDialer  string          `yaml:"system_dialer"`
	FileEncrypted bool            `yaml:"file_encrypted"`
	SDK           int             `yaml:"sdk"`
	Resources     map[string]bool `yaml:"resources"`
}

// IsVoiceCapable reports whether the device can place voice calls.
func (d Device) IsVoiceCapable() bool { return d.VoiceCapable }

// SystemDialerPackage returns the preinstalled dialer package.
func (d Device) SystemDialerPackage() string { return d.SystemDialer }

// Bool returns a boolean resource; unknown resources are false.
func (d Device) Bool(name string) bool { return d.Resources[name] }

// Role configures one role.
type Role struct {
	Name           string   `yaml:"name"`
	Behavior       string   `yaml:"behavior"`
	DefaultHolders []string `yaml:"default_holders"`
	Exclusive      *bool    `yaml:"exclusive,omitempty"`
}

// IsExclusive reports whether at most one package may hold the role.
// Roles are exclusive unless configured otherwise.
func (r Role) IsExclusive() bool {
	return r.Exclusive == nil || *r.Exclusive
}

// Config holds all permctl settings.
type Config struct {
	Catalog  string `yaml:"catalog"`
	Journal  string `yaml:"journal"`
	LogLevel string `yaml:"log_level"`
	Device   Device `yaml:"device"`
	Roles    []Role `yaml:"roles"`
}

// Dir returns ~/.permctl, or an empty string when home is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".permctl")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Catalog:  filepath.Join(dir, "catalog.yaml"),
		Journal:  filepath.Join(dir, "journal.jsonl"),
		LogLevel: "info",
		Device: Device{
			VoiceCapable:  true,
			SystemDialer:  "com.android.dialer",
			FileEncrypted: true,
			SDK:           34,
			Resources: map[string]bool{
				"config_showDialerRole": true,
			},
		},
		Roles: []Role{
			{
				Name:           "android.app.role.DIALER",
				Behavior:       "dialer",
				DefaultHolders: []string{"com.android.dialer"},
			},
			{
				Name:           "android.app.role.SMS",
				DefaultHolders: []string{"com.android.messaging"},
			},
			{
				Name: "android.app.role.BROWSER",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.permctl/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 of the raw
// file bytes, or of empty input when defaults are used.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		dir := Dir()
		if dir == "" {
			return DefaultConfig(), hashOf(nil), nil
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, hashOf(data), nil
}

// Validate checks role definitions.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Roles))
	for i, r := range c.Roles {
		if r.Name == "" {
			return fmt.Errorf("role %d: missing name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("role %q: duplicate definition", r.Name)
		}
		seen[r.Name] = true
		switch r.Behavior {
		case "", "default", "dialer":
		default:
			return fmt.Errorf("role %q: unknown behavior %q", r.Name, r.Behavior)
		}
	}
	return nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for permctl init.
func DefaultConfigYAML() string {
	return `# permctl configuration
# Generated by: permctl init

# Package catalog (permission definitions + installed packages).
# Watched for changes by "permctl watch".
catalog: ~/.permctl/catalog.yaml

# Hash-chained journal of app-op and role holder changes.
journal: ~/.permctl/journal.jsonl

# debug | info | warn | error
log_level: info

# Device facts consulted by role behaviors.
device:
  voice_capable: true
  system_dialer: com.android.dialer
  file_encrypted: true
  sdk: 34
  resources:
    config_showDialerRole: true

# Roles. behavior: dialer | default
roles:
  - name: android.app.role.DIALER
    behavior: dialer
    default_holders: [com.android.dialer]
  - name: android.app.role.SMS
    default_holders: [com.android.messaging]
  - name: android.app.role.BROWSER
`
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
