package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtection(t *testing.T) {
	cases := map[string]Protection{
		"":          ProtectionNormal,
		"normal":    ProtectionNormal,
		"Dangerous": ProtectionDangerous,
		"signature": ProtectionSignature,
		" internal": ProtectionInternal,
	}
	for in, want := range cases {
		got, err := ParseProtection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProtection("signatureOrSystem")
	assert.Error(t, err)
}

func TestProtectionString(t *testing.T) {
	assert.Equal(t, "dangerous", ProtectionDangerous.String())
	assert.Equal(t, "protection(9)", Protection(9).String())
}

func TestInstalledRequiresInstalledAndNotRemoved(t *testing.T) {
	assert.True(t, PermissionInfo{Flags: FlagInstalled}.Installed())
	assert.False(t, PermissionInfo{}.Installed())
	assert.False(t, PermissionInfo{Flags: FlagInstalled | FlagRemoved}.Installed())
}

func TestFlagsHas(t *testing.T) {
	f := ProtectionFlagInstant | ProtectionFlagAppOp
	assert.True(t, f.Has(ProtectionFlagInstant))
	assert.False(t, f.Has(ProtectionFlagRuntimeOnly))
	assert.False(t, f.Has(ProtectionFlagInstant|ProtectionFlagRuntimeOnly))
}

func TestPackageInfoEqual(t *testing.T) {
	a := PackageInfo{Name: "com.example", TargetSDK: 30, RequestedPermissions: []string{"A", "B"}}
	b := a
	b.RequestedPermissions = []string{"A", "B"}
	assert.True(t, a.Equal(b))

	b.RequestedPermissions = []string{"B", "A"}
	assert.False(t, a.Equal(b), "order matters")

	c := a
	c.InstantApp = true
	assert.False(t, a.Equal(c))
}

func TestRequestsAndKey(t *testing.T) {
	p := PackageInfo{Name: "com.example", User: 10, RequestedPermissions: []string{"X"}}
	assert.True(t, p.Requests("X"))
	assert.False(t, p.Requests("Y"))
	assert.Equal(t, Key{Package: "com.example", User: 10}, KeyOf(p))
	assert.Equal(t, "com.example@10", KeyOf(p).String())
}
