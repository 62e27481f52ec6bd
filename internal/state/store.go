package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/emosenkis/family-policy/internal/utils"
)

// Dir returns the fixed, platform-specific directory every state document
// lives under, per spec.md §4.8.
func Dir() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Library/Application Support/family-policy"
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "family-policy")
	default:
		return "/var/lib/family-policy"
	}
}

// AppliedStatePath, TrackerStatePath, and HistoryPath return the fixed
// document paths within Dir().
func AppliedStatePath() string  { return filepath.Join(Dir(), "state.json") }
func TrackerStatePath() string  { return filepath.Join(Dir(), "time-limits-state.json") }
func HistoryPath() string       { return filepath.Join(Dir(), "time-limits-history.json") }

// versioned is satisfied by every persisted document so load() can apply
// the shared "unknown version -> absent" rule once.
type versioned interface {
	getVersion() string
}

func (s *AppliedState) getVersion() string  { return s.Version }
func (s *TrackerState) getVersion() string  { return s.Version }
func (s *UsageHistory) getVersion() string  { return s.Version }

// load reads and JSON-decodes path into dst. It returns (false, nil) if the
// file is absent, and also (false, nil) — after logging a warning — if the
// document's version does not match CurrentVersion, matching spec.md
// §4.8's "reject on version mismatch (warn + treat as None)" rule.
func load[T versioned](path string, dst T) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if dst.getVersion() != CurrentVersion {
		slog.Warn("state file has unknown version, treating as absent", "path", path, "version", dst.getVersion())
		return false, nil
	}
	return true, nil
}

// save pretty-JSON-encodes src and atomic-writes it to path with 0600
// permissions (state files are not world-readable, unlike policy files).
func save(path string, src interface{}) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", path, err)
	}
	return utils.AtomicWrite(path, data, 0o600)
}

// LoadAppliedState returns the persisted AppliedState, or nil if absent or
// version-mismatched.
func LoadAppliedState() (*AppliedState, error) {
	s := &AppliedState{}
	ok, err := load(AppliedStatePath(), s)
	if err != nil || !ok {
		return nil, err
	}
	return s, nil
}

// SaveAppliedState persists s.
func SaveAppliedState(s *AppliedState) error { return save(AppliedStatePath(), s) }

// DeleteAppliedState removes the applied-state file (idempotent: missing
// file is not an error).
func DeleteAppliedState() error { return deleteIfExists(AppliedStatePath()) }

// LoadTrackerState returns the persisted TrackerState, or nil if absent or
// version-mismatched.
func LoadTrackerState() (*TrackerState, error) {
	s := &TrackerState{}
	ok, err := load(TrackerStatePath(), s)
	if err != nil || !ok {
		return nil, err
	}
	return s, nil
}

// SaveTrackerState persists s.
func SaveTrackerState(s *TrackerState) error { return save(TrackerStatePath(), s) }

// DeleteTrackerState removes the tracker-state file.
func DeleteTrackerState() error { return deleteIfExists(TrackerStatePath()) }

// LoadUsageHistory returns the persisted UsageHistory, or nil if absent or
// version-mismatched.
func LoadUsageHistory() (*UsageHistory, error) {
	h := &UsageHistory{}
	ok, err := load(HistoryPath(), h)
	if err != nil || !ok {
		return nil, err
	}
	return h, nil
}

// SaveUsageHistory persists h.
func SaveUsageHistory(h *UsageHistory) error { return save(HistoryPath(), h) }

func deleteIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
