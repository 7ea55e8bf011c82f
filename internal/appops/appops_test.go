package appops

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/audit"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/metrics"
)

func TestDefaultModes(t *testing.T) {
	assert.Equal(t, ModeDefault, DefaultMode(OpAccessCallAudio))
	assert.Equal(t, ModeAllowed, DefaultMode("android:camera"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("foreground")
	require.NoError(t, err)
	assert.Equal(t, ModeForeground, m)

	_, err = ParseMode("sometimes")
	assert.Error(t, err)
}

func TestSetModeReportsChange(t *testing.T) {
	m := metrics.New()
	s := NewStore(nil, nil, m)

	assert.Equal(t, ModeDefault, s.Mode(0, "p", OpAccessCallAudio))

	changed, err := s.SetMode(0, "p", OpAccessCallAudio, ModeAllowed)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, ModeAllowed, s.Mode(0, "p", OpAccessCallAudio))
	assert.Equal(t, ModeDefault, s.Mode(10, "p", OpAccessCallAudio), "per-user state")

	changed, err = s.SetMode(0, "p", OpAccessCallAudio, ModeAllowed)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppOpChanges.WithLabelValues(OpAccessCallAudio, "allowed")))
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	s := NewStore(nil, nil, nil)
	_, err := s.SetMode(0, "p", OpAccessCallAudio, Mode("bogus"))
	assert.Error(t, err)
}

func TestResettingToDefaultClearsSetting(t *testing.T) {
	s := NewStore(nil, nil, nil)
	_, err := s.SetMode(0, "p", OpAccessCallAudio, ModeAllowed)
	require.NoError(t, err)
	require.Len(t, s.Settings(), 1)

	changed, err := s.SetMode(0, "p", OpAccessCallAudio, ModeDefault)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.Settings())
}

func TestSettingsSorted(t *testing.T) {
	s := NewStore(nil, nil, nil)
	_, _ = s.SetMode(10, "a", OpAccessCallAudio, ModeAllowed)
	_, _ = s.SetMode(0, "b", OpAccessCallAudio, ModeAllowed)
	_, _ = s.SetMode(0, "a", "android:camera", ModeIgnored)

	got := s.Settings()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Package)
	assert.Equal(t, "b", got[1].Package)
	assert.EqualValues(t, 10, got[2].User)
}

func TestRestoreReplaysJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	journal, err := audit.Open(path)
	require.NoError(t, err)
	s := NewStore(journal, nil, nil)
	_, err = s.SetMode(0, "dialer", OpAccessCallAudio, ModeAllowed)
	require.NoError(t, err)
	_, err = s.SetMode(0, "old", OpAccessCallAudio, ModeAllowed)
	require.NoError(t, err)
	_, err = s.SetMode(0, "old", OpAccessCallAudio, ModeDefault)
	require.NoError(t, err)
	require.NoError(t, journal.Record(audit.Entry{Kind: audit.KindRole, Package: "dialer", Subject: "r", Value: "add"}))
	require.NoError(t, journal.Close())

	assert.True(t, audit.Verify(path).Valid)

	entries, err := audit.Read(path, audit.Filter{})
	require.NoError(t, err)

	restored := NewStore(nil, nil, nil)
	restored.Restore(entries)
	assert.Equal(t, ModeAllowed, restored.Mode(0, "dialer", OpAccessCallAudio))
	assert.Equal(t, ModeDefault, restored.Mode(0, "old", OpAccessCallAudio))
	assert.Len(t, restored.Settings(), 1)

	old, err := audit.Read(path, audit.Filter{Package: "old"})
	require.NoError(t, err)
	require.Len(t, old, 2)
	assert.Equal(t, "allowed", old[1].Previous)
}

func TestRestoreSkipsBadModes(t *testing.T) {
	s := NewStore(nil, nil, nil)
	s.Restore([]audit.Entry{
		{Kind: audit.KindAppOp, Package: "p", Subject: OpAccessCallAudio, Value: "bogus"},
		{Kind: audit.KindAppOp, Package: "p", Subject: "android:camera", Value: "ignored"},
	})
	assert.Equal(t, ModeDefault, s.Mode(0, "p", OpAccessCallAudio))
	assert.Equal(t, ModeIgnored, s.Mode(0, "p", "android:camera"))
}
