package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// tempPath returns a path named name inside a fresh temp directory (the
// production paths are fixed per spec.md §4.8, so tests exercise the
// save/load round trip through explicit paths instead of monkeypatching
// Dir()).
func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestAppliedStateRoundTrip(t *testing.T) {
	path := tempPath(t, "state.json")
	want := NewAppliedState()
	want.ConfigHash = "sha256:deadbeef"
	want.LastUpdated = time.Now().UTC().Truncate(time.Second)
	want.AppliedPolicies.Chrome = &BrowserState{Extensions: []string{"ddkjiahejlhfcafbddmgiahcphecmpfh"}}

	if err := save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := &AppliedState{}
	ok, err := load(path, got)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected state to be present")
	}
	if got.ConfigHash != want.ConfigHash {
		t.Errorf("ConfigHash = %q, want %q", got.ConfigHash, want.ConfigHash)
	}
	if len(got.AppliedPolicies.Chrome.Extensions) != 1 {
		t.Errorf("expected 1 extension, got %d", len(got.AppliedPolicies.Chrome.Extensions))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadAbsentReturnsFalse(t *testing.T) {
	path := tempPath(t, "missing.json")
	got := &AppliedState{}
	ok, err := load(path, got)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected absent file to report not-ok")
	}
}

func TestLoadVersionMismatchTreatedAsAbsent(t *testing.T) {
	path := tempPath(t, "state.json")
	stale := &AppliedState{Version: "0.9"}
	if err := save(path, stale); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := &AppliedState{}
	ok, err := load(path, got)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected version mismatch to report not-ok")
	}
}

func TestTrackerStateDailyRollover(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 30, 0, 0, time.UTC)
	ts := NewTrackerState(now.Add(-24 * time.Hour))
	child := ts.GetOrCreateChild("kid1", "Alice")
	child.Today.UsedSeconds = 7200
	child.Today.WarningsShown = []uint32{15, 5, 1}
	ts.ActiveSession = NewActiveSession("kid1", now)
	ts.AdminOverrides = []AdminOverride{{ChildID: "kid1", Type: OverrideExtension, AdditionalSeconds: 600}}

	if !ts.NeedsDailyReset(now) {
		t.Fatalf("expected rollover to be needed")
	}
	ts.ResetForNewDay(now)

	if ts.Children["kid1"].Today.UsedSeconds != 0 {
		t.Errorf("used_seconds not reset: %d", ts.Children["kid1"].Today.UsedSeconds)
	}
	if len(ts.Children["kid1"].Today.WarningsShown) != 0 {
		t.Errorf("warnings_shown not cleared")
	}
	if ts.ActiveSession != nil {
		t.Errorf("active session not cleared")
	}
	if len(ts.AdminOverrides) != 0 {
		t.Errorf("overrides not discarded")
	}
}

func TestUsageHistoryCapsAt90(t *testing.T) {
	h := NewUsageHistory()
	for i := 0; i < 120; i++ {
		h.AddRecord(DayRecord{Date: time.Now().AddDate(0, 0, -i).Format("2006-01-02")})
	}
	if len(h.Records) != MaxHistoryEntries {
		t.Fatalf("len(Records) = %d, want %d", len(h.Records), MaxHistoryEntries)
	}
}

func TestDayUsageWarningThresholds(t *testing.T) {
	d := &DayUsage{}
	if !d.ShouldShowWarning(15) {
		t.Fatalf("expected warning 15 to be showable")
	}
	d.MarkWarningShown(15)
	if d.ShouldShowWarning(15) {
		t.Fatalf("expected warning 15 to no longer be showable")
	}
	if !d.ShouldShowWarning(5) {
		t.Fatalf("expected warning 5 to still be showable")
	}
}
