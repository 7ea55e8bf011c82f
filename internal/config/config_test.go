package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestMissingFileReturnsDefaults(t *testing.T) {
	cfg, hash, err := LoadConfigWithHash(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, hashOf(nil), hash)
}

func TestDefaultYAMLMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig(write(t, DefaultConfigYAML()))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Device, cfg.Device)
	assert.Equal(t, def.Roles, cfg.Roles)
	assert.Equal(t, "~/.permctl/catalog.yaml", cfg.Catalog)
}

func TestPartialOverride(t *testing.T) {
	cfg, err := LoadConfig(write(t, `
device:
  voice_capable: false
  resources:
    config_showDialerRole: false
`))
	require.NoError(t, err)

	assert.False(t, cfg.Device.IsVoiceCapable())
	assert.False(t, cfg.Device.Bool("config_showDialerRole"))
	assert.Equal(t, "com.android.dialer", cfg.Device.SystemDialerPackage(), "unspecified fields keep defaults")
	assert.Len(t, cfg.Roles, 3)
}

func TestInvalidYAML(t *testing.T) {
	_, err := LoadConfig(write(t, "device: ["))
	assert.Error(t, err)
}

func TestValidateRoles(t *testing.T) {
	_, err := LoadConfig(write(t, "roles:\n  - name: a\n    behavior: pager\n"))
	assert.ErrorContains(t, err, "unknown behavior")

	_, err = LoadConfig(write(t, "roles:\n  - name: a\n  - name: a\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = LoadConfig(write(t, "roles:\n  - behavior: dialer\n"))
	assert.ErrorContains(t, err, "missing name")
}

func TestHashChangesWithContent(t *testing.T) {
	_, h1, err := LoadConfigWithHash(write(t, "log_level: debug\n"))
	require.NoError(t, err)
	_, h2, err := LoadConfigWithHash(write(t, "log_level: warn\n"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestRoleExclusiveDefault(t *testing.T) {
	no := false
	assert.True(t, Role{Name: "a"}.IsExclusive())
	assert.False(t, Role{Name: "a", Exclusive: &no}.IsExclusive())
}

func TestUnknownResourceIsFalse(t *testing.T) {
	assert.False(t, Device{}.Bool("config_whatever"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), ExpandHome("~/x/y"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~", ExpandHome("~"))
}
