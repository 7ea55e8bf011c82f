package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/engine"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/livedata"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/role"
)

// resetFlags restores flag variables between Execute calls on the shared
// root command.
func resetFlags() {
	configPath, catalogPath, journalPath, logLevel = "", "", "", ""
	groupsUser, groupsFormat = 0, "text"
	packagesUser, packagesFormat = 0, "text"
	roleUser, roleFormat = 0, "text"
	appopsUser = 0
	tailLines, tailKind, tailPackage, tailFormat = 10, "", "", "text"
	initForce = false
	versionFormat = "text"
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

type workspace struct {
	dir     string
	journal string
	flags   []string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(catalog.SampleYAML()), 0o600))
	journal := filepath.Join(dir, "journal.jsonl")

	return workspace{
		dir:     dir,
		journal: journal,
		flags: []string{
			"--config", filepath.Join(dir, "config.yaml"),
			"--catalog", catPath,
			"--journal", journal,
			"--log-level", "error",
		},
	}
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append(args, w.flags...)...)
}

func TestGroupsText(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "groups", "com.example.camera")
	require.NoError(t, err)
	assert.Equal(t,
		"android.permission-group.CAMERA\n"+
			"  android.permission.CAMERA\n"+
			model.NonRuntimeNormalPerms+"\n"+
			"  android.permission.INTERNET\n",
		out)
}

func TestGroupsJSON(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "groups", "com.android.dialer", "-f", "json")
	require.NoError(t, err)

	var views []groupView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, model.NonRuntimeNormalPerms, views[2].Name, "sentinel sorts last")
	for _, v := range views {
		assert.NotContains(t, v.Permissions, "android.permission.ACCESS_CALL_AUDIO")
	}
}

func TestGroupsErrors(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "groups", "com.nope")
	assert.ErrorContains(t, err, "not installed")

	_, err = ws.run(t, "groups", "com.android.dialer", "--user", "10")
	assert.Error(t, err)

	_, err = ws.run(t, "groups", "com.android.dialer", "-f", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestPackages(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "packages")
	require.NoError(t, err)
	assert.Contains(t, out, "com.android.dialer")
	assert.Contains(t, out, "com.example.camera")

	out, err = ws.run(t, "packages", "--user", "10")
	require.NoError(t, err)
	assert.Equal(t, "No packages for user 10.\n", out)

	out, err = ws.run(t, "packages", "-f", "json")
	require.NoError(t, err)
	var pkgs []model.PackageInfo
	require.NoError(t, json.Unmarshal([]byte(out), &pkgs))
	assert.Len(t, pkgs, 2)
}

func TestRoleLifecycle(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "role", "assign", role.NameDialer, "com.android.dialer")
	require.NoError(t, err)
	assert.Contains(t, out, "com.android.dialer")

	out, err = ws.run(t, "role", "status", role.NameDialer, "-f", "json")
	require.NoError(t, err)
	var st role.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, []string{"com.android.dialer"}, st.Holders)
	assert.True(t, st.Available)

	out, err = ws.run(t, "role", "status", role.NameDialer)
	require.NoError(t, err)
	assert.Contains(t, out, "* com.android.dialer  (System default)")

	out, err = ws.run(t, "appops", "get", "com.android.dialer", "android:access_call_audio")
	require.NoError(t, err)
	assert.Equal(t, "allowed\n", out)

	out, err = ws.run(t, "role", "remove", role.NameDialer, "com.android.dialer")
	require.NoError(t, err)
	assert.Contains(t, out, ": -")

	_, err = ws.run(t, "role", "remove", role.NameDialer, "com.android.dialer")
	assert.True(t, errors.Is(err, role.ErrNotHolder))

	out, err = ws.run(t, "audit", "verify")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK: "), out)

	out, err = ws.run(t, "audit", "tail", "--kind", "role", "-f", "json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
}

func TestRoleErrors(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "role", "status", "android.app.role.NOPE")
	assert.True(t, errors.Is(err, role.ErrUnknownRole))

	_, err = ws.run(t, "role", "assign", role.NameDialer, "com.nope")
	assert.True(t, errors.Is(err, role.ErrPackageNotFound))
}

func TestRoleList(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "role", "list")
	require.NoError(t, err)
	assert.Contains(t, out, role.NameDialer)
	assert.Contains(t, out, "android.app.role.SMS")
}

func TestAppopsSet(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "appops", "set", "com.example.camera", "android:camera", "ignored")
	require.NoError(t, err)
	assert.Contains(t, out, "set to ignored")

	out, err = ws.run(t, "appops", "set", "com.example.camera", "android:camera", "ignored")
	require.NoError(t, err)
	assert.Contains(t, out, "already ignored")

	out, err = ws.run(t, "appops", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "android:camera")

	_, err = ws.run(t, "appops", "set", "com.example.camera", "android:camera", "sometimes")
	assert.ErrorContains(t, err, "unknown app-op mode")
}

func TestAuditVerifyDetectsTampering(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "appops", "set", "com.example.camera", "android:camera", "ignored")
	require.NoError(t, err)
	_, err = ws.run(t, "appops", "set", "com.example.camera", "android:camera", "errored")
	require.NoError(t, err)

	data, err := os.ReadFile(ws.journal)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"ignored"`, `"allowed"`, 1)
	require.NoError(t, os.WriteFile(ws.journal, []byte(tampered), 0o600))

	_, err = ws.run(t, "audit", "verify", ws.journal)
	assert.ErrorContains(t, err, "failed at line")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	out, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created:")

	for _, name := range []string{"config.yaml", "catalog.yaml"} {
		_, err := os.Stat(filepath.Join(dir, ".permctl", name))
		assert.NoError(t, err, name)
	}

	out, err = runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exist")

	out, err = runCLI(t, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Created:")

	// The written files drive every command without extra flags.
	out, err = runCLI(t, "groups", "com.android.dialer", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "android.permission-group.PHONE")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version", "-f", "json")
	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "permctl", info.Name)
	assert.Equal(t, version, info.Version)
	assert.Equal(t, model.RuntimePermissionsSDK, info.RuntimePermissionsSDK)
	assert.Equal(t, model.NonRuntimeNormalPerms, info.NormalGroup)

	out, err = runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "permctl "+version), out)
	assert.Contains(t, out, "SDK 23")
}

func TestObservePackagesStreamsSnapshots(t *testing.T) {
	ws := newWorkspace(t)

	e, err := engine.New(engine.Options{
		ConfigPath:  filepath.Join(ws.dir, "config.yaml"),
		CatalogPath: filepath.Join(ws.dir, "catalog.yaml"),
		JournalPath: ws.journal,
		LogLevel:    "error",
	})
	require.NoError(t, err)
	defer e.Close()

	var buf bytes.Buffer
	release := observePackages(e, []string{"com.example.camera", "com.nope"}, 0, json.NewEncoder(&buf))
	assert.Equal(t, 2, e.Repo.Len())

	dec := json.NewDecoder(&buf)
	var first, second livedata.Snapshot
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "com.example.camera", first.Key.Package)
	assert.True(t, first.Present)
	assert.Contains(t, first.Groups, "android.permission-group.CAMERA")
	assert.False(t, second.Present)

	release()
	assert.Equal(t, 0, e.Repo.Len())
}
