// Package tracker implements the cooperative time-limit tracker: a single
// background goroutine that ticks every few seconds, accumulates per-child
// usage, issues threshold warnings, and enforces a lock once a child's
// budget is exhausted. Grounded on
// original_source/src/time_limits/tracker.rs's TimeTracker.
package tracker

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/emosenkis/family-policy/internal/admin"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/enforcement"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/state"
)

var log = logging.For("tracker")

// defaultTickInterval matches the original tool's 10-second accounting
// granularity: every tick adds that many seconds to the active child's
// used_seconds.
const defaultTickInterval = 10 * time.Second

// Tracker owns the authoritative TrackerState and config for one machine and
// drives the single background accounting loop.
type Tracker struct {
	mu       sync.Mutex
	cfg      *config.TimeLimitsConfig
	st       *state.TrackerState
	history  *state.UsageHistory
	enforcer *enforcement.Enforcer
	limiter  *admin.RateLimiter
	interval time.Duration

	running bool
	paused  bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// graceCancel holds one cancellation channel per child currently inside
	// its post-exhaustion grace wait. Closing (or sending to) the channel
	// lets GrantExtension/ResetTime interrupt the wait before the lock
	// fires, which original_source's synchronous tokio::time::sleep could
	// never do.
	graceCancel map[string]chan struct{}
}

// New builds a Tracker over the given config, state, and history documents,
// driving lock/notify operations through enforcer.
func New(cfg *config.TimeLimitsConfig, st *state.TrackerState, history *state.UsageHistory, enforcer *enforcement.Enforcer) *Tracker {
	return &Tracker{
		cfg:         cfg,
		st:          st,
		history:     history,
		enforcer:    enforcer,
		limiter:     admin.NewRateLimiter(3, 60*time.Second),
		interval:    defaultTickInterval,
		graceCancel: make(map[string]chan struct{}),
	}
}

// Start launches the background accounting loop. It is an error to Start an
// already-running Tracker.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("time tracker is already running")
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.mu.Unlock()

	log.Info("starting time tracker")
	t.wg.Add(1)
	go t.loop()
	return nil
}

// Stop signals the loop to exit and waits for it to finish.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	close(t.stopCh)
	t.mu.Unlock()

	t.wg.Wait()
	log.Info("time tracker stopped")
	return nil
}

func (t *Tracker) loop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case now := <-ticker.C:
			if t.isPaused() {
				continue
			}
			if err := t.Tick(now); err != nil {
				log.Error("tracking iteration failed", "error", err)
			}
		}
	}
}

func (t *Tracker) isPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Pause suspends accounting process-wide and marks any active session
// paused, matching original_source's pause().
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
	if t.st.ActiveSession != nil {
		t.st.ActiveSession.Paused = true
	}
	log.Info("time tracking paused")
}

// Resume lifts a prior Pause.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
	if t.st.ActiveSession != nil {
		t.st.ActiveSession.Paused = false
	}
	log.Info("time tracking resumed")
}

// Tick runs one accounting iteration as of now. Exported so daemon wiring
// and tests can drive iterations without a live ticker.
func (t *Tracker) Tick(now time.Time) error {
	t.mu.Lock()

	if t.st.NeedsDailyReset(now) {
		t.rolloverDay(now)
	}

	active := t.st.ActiveSession
	if active == nil {
		t.autoDetectChild(now)
		t.persistLocked()
		t.mu.Unlock()
		return nil
	}

	if active.Paused {
		t.mu.Unlock()
		return nil
	}

	childID := active.ChildID
	childCfg, ok := t.findChild(childID)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("active child %q not found in config", childID)
	}

	childState := t.st.GetOrCreateChild(childCfg.ID, childCfg.Name)
	if childState.Today.IsLocked() {
		t.mu.Unlock()
		return nil
	}

	additional := t.st.OverridesForChildToday(childID)
	intervalSeconds := int64(t.interval.Seconds())
	childState.Today.UsedSeconds += intervalSeconds

	remaining := remainingSeconds(childCfg, now, childState.Today.UsedSeconds, additional)
	childState.Today.RemainingSeconds = remaining

	for _, minutes := range childCfg.Warnings {
		warningSeconds := int64(minutes) * 60
		if remaining <= warningSeconds && remaining > warningSeconds-intervalSeconds {
			if childState.Today.ShouldShowWarning(minutes) {
				t.enforcer.SendWarning(childCfg.Name, minutes)
				childState.Today.MarkWarningShown(minutes)
			}
		}
	}

	if remaining > 0 {
		t.persistLocked()
		t.mu.Unlock()
		return nil
	}

	log.Info("time expired", "child", childCfg.Name)
	t.enforcer.SendFinalWarning(childCfg.Name, childCfg.GracePeriod)

	cancel := make(chan struct{})
	t.graceCancel[childID] = cancel
	t.persistLocked()
	t.mu.Unlock()

	select {
	case <-time.After(time.Duration(childCfg.GracePeriod) * time.Second):
	case <-cancel:
		log.Info("grace period cancelled by admin override", "child", childCfg.Name)
	}

	t.mu.Lock()
	delete(t.graceCancel, childID)

	// Re-check: an extension or reset granted during the wait may have
	// cleared the exhaustion, or the active session may have moved on.
	childState, stillExists := t.st.GetChild(childID)
	if stillExists && !childState.Today.IsLocked() {
		additional = t.st.OverridesForChildToday(childID)
		remaining = remainingSeconds(childCfg, now, childState.Today.UsedSeconds, additional)
		if remaining <= 0 {
			childState.Today.Lock(now)
			if err := t.enforcer.EnforceLock(childCfg.Name); err != nil {
				log.Error("lock enforcement failed", "child", childCfg.Name, "error", err)
			}
		}
	}
	t.persistLocked()
	t.mu.Unlock()
	return nil
}

// findChild looks up a ChildProfile by ID.
func (t *Tracker) findChild(id string) (config.ChildProfile, bool) {
	for _, c := range t.cfg.Children {
		if c.ID == id {
			return c, true
		}
	}
	return config.ChildProfile{}, false
}

// autoDetectChild starts a session for the console's logged-in OS user, in
// individual-login mode only. Shared-login mode requires explicit
// SelectChild calls. Caller must hold t.mu.
func (t *Tracker) autoDetectChild(now time.Time) {
	if t.cfg.SharedLogin.Enabled {
		return
	}

	user, err := currentOSUser()
	if err != nil {
		log.Warn("could not determine console user", "error", err)
		return
	}
	if user == "" {
		return
	}
	for _, acct := range t.cfg.Admin.AdminAccounts {
		if acct == user {
			return
		}
	}

	for _, child := range t.cfg.Children {
		if containsString(child.OSUsers, user) {
			log.Info("auto-detected child session", "child", child.Name, "user", user)
			t.st.ActiveSession = state.NewActiveSession(child.ID, now)
			t.st.GetOrCreateChild(child.ID, child.Name)
			return
		}
	}
	log.Warn("logged-in user is not configured as admin or child", "user", user)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// rolloverDay archives yesterday's usage into history and resets the
// per-child accounting for the new day. Caller must hold t.mu.
func (t *Tracker) rolloverDay(now time.Time) {
	log.Info("resetting state for new day", "previous_date", t.st.StateDate)

	rec := state.DayRecord{Date: t.st.StateDate}
	for id, child := range t.st.Children {
		rec.Children = append(rec.Children, state.ChildDayRecord{
			ChildID:     id,
			UsedSeconds: child.Today.UsedSeconds,
			Overrides:   overridesForChild(t.st.AdminOverrides, id),
		})
	}
	if len(rec.Children) > 0 {
		t.history.AddRecord(rec)
		if err := state.SaveUsageHistory(t.history); err != nil {
			log.Error("saving usage history failed", "error", err)
		}
	}

	t.st.ResetForNewDay(now)
}

func overridesForChild(overrides []state.AdminOverride, childID string) []state.AdminOverride {
	var out []state.AdminOverride
	for _, o := range overrides {
		if o.ChildID == childID {
			out = append(out, o)
		}
	}
	return out
}

// persistLocked saves the tracker state. Caller must hold t.mu.
func (t *Tracker) persistLocked() {
	if err := state.SaveTrackerState(t.st); err != nil {
		log.Error("saving tracker state failed", "error", err)
	}
}

// SelectChild switches the active session to childID, first closing the
// outgoing child's session and recording it in that child's sessions for
// today. Only valid in shared-login mode.
func (t *Tracker) SelectChild(childID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.SharedLogin.Enabled {
		return fmt.Errorf("shared login mode is not enabled")
	}
	child, ok := t.findChild(childID)
	if !ok {
		return fmt.Errorf("child not found: %s", childID)
	}

	if t.st.ActiveSession != nil {
		t.endActiveSessionLocked(time.Now())
	}

	t.st.ActiveSession = state.NewActiveSession(child.ID, time.Now())
	t.st.GetOrCreateChild(child.ID, child.Name)
	t.persistLocked()
	log.Info("selected child", "child", child.Name, "id", child.ID)
	return nil
}

// endActiveSessionLocked appends the current active session as a completed
// Session on its child's DayUsage. Caller must hold t.mu.
func (t *Tracker) endActiveSessionLocked(now time.Time) {
	active := t.st.ActiveSession
	if active == nil {
		return
	}
	if childState, ok := t.st.GetChild(active.ChildID); ok {
		childState.Today.AddSession(state.Session{
			Start:           active.SessionStart,
			End:             &now,
			DurationSeconds: active.DurationSeconds(now),
		})
	}
}

// GrantExtension authenticates adminPassword and credits childID with
// additionalMinutes more time today, unlocking it if currently locked and
// interrupting any in-progress grace wait.
func (t *Tracker) GrantExtension(childID string, additionalMinutes uint32, adminPassword, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := admin.VerifyWithRateLimit(t.limiter, time.Now(), adminPassword, t.cfg.Admin.PasswordHash); err != nil {
		return err
	}

	childState, ok := t.st.GetChild(childID)
	if !ok {
		return fmt.Errorf("child not found: %s", childID)
	}
	childState.Today.Unlock()

	grantedBy, _ := currentOSUser()
	t.st.AdminOverrides = append(t.st.AdminOverrides, state.AdminOverride{
		ChildID:           childID,
		Type:              state.OverrideExtension,
		AdditionalSeconds: int64(additionalMinutes) * 60,
		GrantedAt:         time.Now(),
		GrantedBy:         grantedBy,
		Reason:            reason,
	})
	t.persistLocked()
	t.cancelGraceLocked(childID)

	log.Info("granted time extension", "child", childID, "minutes", additionalMinutes)
	return nil
}

// ResetTime authenticates adminPassword and zeroes childID's usage for
// today, clearing any lock and interrupting a grace wait.
func (t *Tracker) ResetTime(childID, adminPassword string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := admin.VerifyWithRateLimit(t.limiter, time.Now(), adminPassword, t.cfg.Admin.PasswordHash); err != nil {
		return err
	}

	childState, ok := t.st.GetChild(childID)
	if !ok {
		return fmt.Errorf("child not found: %s", childID)
	}
	childState.Today.UsedSeconds = 0
	childState.Today.Sessions = nil
	childState.Today.WarningsShown = nil
	childState.Today.Unlock()

	grantedBy, _ := currentOSUser()
	t.st.AdminOverrides = append(t.st.AdminOverrides, state.AdminOverride{
		ChildID:   childID,
		Type:      state.OverrideReset,
		GrantedAt: time.Now(),
		GrantedBy: grantedBy,
		Reason:    "manual reset",
	})
	t.persistLocked()
	t.cancelGraceLocked(childID)

	log.Info("reset time", "child", childID)
	return nil
}

// cancelGraceLocked interrupts childID's in-progress grace wait, if any.
// Caller must hold t.mu.
func (t *Tracker) cancelGraceLocked(childID string) {
	if cancel, ok := t.graceCancel[childID]; ok {
		close(cancel)
		delete(t.graceCancel, childID)
	}
}

// GetState returns a point-in-time deep copy of the tracker state, safe for
// a caller to read without holding the tracker's lock.
func (t *Tracker) GetState() *state.TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneJSON(t.st)
}

// GetConfig returns a point-in-time deep copy of the tracker's config.
func (t *Tracker) GetConfig() *config.TimeLimitsConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneJSON(t.cfg)
}

// cloneJSON deep-copies src via a JSON round-trip, matching the teacher's
// preference for short critical sections over bespoke Clone methods.
func cloneJSON[T any](src T) T {
	data, err := json.Marshal(src)
	if err != nil {
		log.Error("snapshot clone failed", "error", err)
		return src
	}
	var dst T
	if err := json.Unmarshal(data, &dst); err != nil {
		log.Error("snapshot clone failed", "error", err)
		return src
	}
	return dst
}
