package state

import "time"

// TrackerState is the tracker's authoritative per-endpoint accounting
// record: today's date, every known child's usage, the currently active
// session (if any), and today's admin overrides.
type TrackerState struct {
	Version        string                 `json:"version"`
	StateDate      string                 `json:"state_date"` // YYYY-MM-DD
	Children       map[string]*ChildState `json:"children"`
	ActiveSession  *ActiveSession         `json:"active_session,omitempty"`
	AdminOverrides []AdminOverride        `json:"admin_overrides"`
}

// ChildState is one child's persisted identity and today's usage.
type ChildState struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Today DayUsage `json:"today"`
}

// DayUsage is the accounting record for a single day.
type DayUsage struct {
	Date             string     `json:"date"`
	UsedSeconds      int64      `json:"used_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Sessions         []Session  `json:"sessions"`
	WarningsShown    []uint32   `json:"warnings_shown"`
	LockedAt         *time.Time `json:"locked_at,omitempty"`
}

// AddSession appends a completed session to today's usage.
func (d *DayUsage) AddSession(s Session) {
	d.Sessions = append(d.Sessions, s)
}

// ShouldShowWarning reports whether the warning threshold w (minutes) has
// not yet been shown today.
func (d *DayUsage) ShouldShowWarning(w uint32) bool {
	for _, shown := range d.WarningsShown {
		if shown == w {
			return false
		}
	}
	return true
}

// MarkWarningShown records that threshold w has been shown today.
func (d *DayUsage) MarkWarningShown(w uint32) {
	if d.ShouldShowWarning(w) {
		d.WarningsShown = append(d.WarningsShown, w)
	}
}

// IsLocked reports whether the child was already locked today.
func (d *DayUsage) IsLocked() bool { return d.LockedAt != nil }

// Lock records the lock timestamp.
func (d *DayUsage) Lock(at time.Time) { d.LockedAt = &at }

// Unlock clears the lock timestamp (used by admin overrides).
func (d *DayUsage) Unlock() { d.LockedAt = nil }

// Session is one completed span of tracked usage.
type Session struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
}

// ActiveSession is the single in-progress session, owned exclusively by
// the tracker goroutine.
type ActiveSession struct {
	ChildID      string    `json:"child_id"`
	SessionStart time.Time `json:"session_start"`
	LastActivity time.Time `json:"last_activity"`
	Paused       bool      `json:"paused"`
}

// NewActiveSession opens a session for childID starting now.
func NewActiveSession(childID string, now time.Time) *ActiveSession {
	return &ActiveSession{ChildID: childID, SessionStart: now, LastActivity: now}
}

// UpdateActivity refreshes the last-activity timestamp.
func (a *ActiveSession) UpdateActivity(now time.Time) { a.LastActivity = now }

// DurationSeconds returns the elapsed session length as of now.
func (a *ActiveSession) DurationSeconds(now time.Time) int64 {
	return int64(now.Sub(a.SessionStart).Seconds())
}

// IsIdle reports whether the session has seen no activity for longer than
// idleThreshold.
func (a *ActiveSession) IsIdle(now time.Time, idleThreshold time.Duration) bool {
	return now.Sub(a.LastActivity) > idleThreshold
}

// OverrideType names the kind of admin override recorded.
type OverrideType string

const (
	OverrideExtension OverrideType = "extension"
	OverrideReset     OverrideType = "reset"
	OverrideUnlock    OverrideType = "unlock"
	OverridePause     OverrideType = "pause"
)

// AdminOverride is one admin-authorized adjustment to a child's day.
type AdminOverride struct {
	ChildID           string       `json:"child_id"`
	Type              OverrideType `json:"type"`
	AdditionalSeconds int64        `json:"additional_seconds,omitempty"`
	GrantedAt         time.Time    `json:"granted_at"`
	GrantedBy         string       `json:"granted_by,omitempty"`
	Reason            string       `json:"reason,omitempty"`
}

// NewTrackerState builds an empty, current-version TrackerState dated today.
func NewTrackerState(today time.Time) *TrackerState {
	return &TrackerState{
		Version:   CurrentVersion,
		StateDate: today.UTC().Format("2006-01-02"),
		Children:  make(map[string]*ChildState),
	}
}

// NeedsDailyReset reports whether now's UTC date differs from StateDate.
func (t *TrackerState) NeedsDailyReset(now time.Time) bool {
	return t.StateDate != now.UTC().Format("2006-01-02")
}

// ResetForNewDay performs the daily-rollover invariant from spec.md §3:
// every DayUsage resets, the active session is cleared, and overrides are
// discarded.
func (t *TrackerState) ResetForNewDay(now time.Time) {
	today := now.UTC().Format("2006-01-02")
	t.StateDate = today
	for _, child := range t.Children {
		child.Today = DayUsage{Date: today}
	}
	t.ActiveSession = nil
	t.AdminOverrides = nil
}

// GetOrCreateChild returns the existing ChildState for id, creating one
// (dated to StateDate) if absent.
func (t *TrackerState) GetOrCreateChild(id, name string) *ChildState {
	if t.Children == nil {
		t.Children = make(map[string]*ChildState)
	}
	if c, ok := t.Children[id]; ok {
		return c
	}
	c := &ChildState{ID: id, Name: name, Today: DayUsage{Date: t.StateDate}}
	t.Children[id] = c
	return c
}

// GetChild returns the ChildState for id, if known.
func (t *TrackerState) GetChild(id string) (*ChildState, bool) {
	c, ok := t.Children[id]
	return c, ok
}

// OverridesForChildToday sums additional_seconds across today's overrides
// for childID.
func (t *TrackerState) OverridesForChildToday(childID string) int64 {
	var total int64
	for _, o := range t.AdminOverrides {
		if o.ChildID == childID {
			total += o.AdditionalSeconds
		}
	}
	return total
}
