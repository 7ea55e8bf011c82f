package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/engine"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/role"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(catalog.SampleYAML()), 0600))

	e, err := engine.New(engine.Options{
		ConfigPath:  filepath.Join(dir, "config.yaml"),
		CatalogPath: catPath,
		JournalPath: filepath.Join(dir, "journal.jsonl"),
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	return New(e, "test")
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)

	result, out, err := s.handleGroups(context.Background(), &mcpsdk.CallToolRequest{}, GroupsInput{Package: "com.example.camera"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, out.Present)
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "android.permission-group.CAMERA", out.Groups[0].Name)
	assert.Equal(t, model.NonRuntimeNormalPerms, out.Groups[1].Name)
}

func TestGroupsMissingPackage(t *testing.T) {
	s := newTestServer(t)

	result, out, err := s.handleGroups(context.Background(), &mcpsdk.CallToolRequest{}, GroupsInput{Package: "com.nope"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.False(t, out.Present)
}

func TestRoleAssignAndStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, out, err := s.handleRoleAssign(ctx, &mcpsdk.CallToolRequest{}, RoleChangeInput{Role: role.NameDialer, Package: "com.android.dialer"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"com.android.dialer"}, out.Holders)

	_, st, err := s.handleRoleStatus(ctx, &mcpsdk.CallToolRequest{}, RoleInput{Role: role.NameDialer})
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.Equal(t, []string{"com.android.dialer"}, st.Holders)

	result, out, err = s.handleRoleRemove(ctx, &mcpsdk.CallToolRequest{}, RoleChangeInput{Role: role.NameDialer, Package: "com.android.dialer"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, out.Holders)
}

func TestRoleAssignRefused(t *testing.T) {
	s := newTestServer(t)

	result, out, err := s.handleRoleAssign(context.Background(), &mcpsdk.CallToolRequest{}, RoleChangeInput{Role: role.NameDialer, Package: "com.nope"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, out.Error, "not installed")
}

func TestRoleStatusUnknownRole(t *testing.T) {
	s := newTestServer(t)
	result, out, err := s.handleRoleStatus(context.Background(), &mcpsdk.CallToolRequest{}, RoleInput{Role: "nope"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, out.Error, "unknown role")
}
