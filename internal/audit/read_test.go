package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) string {
	t.Helper()
	l, path := newTestLog(t)
	require.NoError(t, l.Record(appOpEntry("a", "allowed")))
	require.NoError(t, l.Record(Entry{Kind: KindRole, Package: "a", Subject: "android.app.role.DIALER", Value: "assign"}))
	require.NoError(t, l.Record(appOpEntry("b", "allowed")))
	require.NoError(t, l.Record(Entry{Kind: KindAppOp, Package: "a", Subject: "android:access_call_audio", Value: "default", Previous: "allowed"}))
	require.NoError(t, l.Close())
	return path
}

func TestReadFilters(t *testing.T) {
	path := seed(t)

	all, err := Read(path, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	ops, err := Read(path, Filter{Kind: KindAppOp})
	require.NoError(t, err)
	assert.Len(t, ops, 3)

	forA, err := Read(path, Filter{Kind: KindAppOp, Package: "a"})
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, "allowed", forA[0].Value)
	assert.Equal(t, "default", forA[1].Value)

	roles, err := Read(path, Filter{Subject: "android.app.role.DIALER"})
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestReadMissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "nope"), Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	path := seed(t)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("garbage\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	all, err := Read(path, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTail(t *testing.T) {
	path := seed(t)

	last, err := Tail(path, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].Package)

	all, err := Tail(path, 100)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "No entries.\n", FormatText(nil))

	out := FormatText([]Entry{{Kind: KindAppOp, Package: "a", Subject: "op", Value: "default", Previous: "allowed"}})
	assert.Contains(t, out, "allowed -> default")
	assert.Contains(t, out, "appop")
}
