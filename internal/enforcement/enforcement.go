// Package enforcement dispatches the time tracker's lock and warning
// operations to the platform lock/notify adaptors, generalizing the
// teacher's sequential steps, log-and-continue RunOnce into a two-operation
// enforcer.
package enforcement

import (
	"fmt"

	"github.com/emosenkis/family-policy/internal/apperr"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/platform"
)

var log = logging.For("enforcement")

// Enforcer dispatches lock and notification operations for the time
// tracker, grounded on original_source/src/time_limits/enforcement.rs's
// LockEnforcer.
type Enforcer struct {
	locker   platform.Locker
	notifier platform.Notifier
	action   config.LockAction
}

// New builds an Enforcer configured to perform action when a budget is
// exhausted.
func New(locker platform.Locker, notifier platform.Notifier, action config.LockAction) *Enforcer {
	return &Enforcer{locker: locker, notifier: notifier, action: action}
}

// EnforceLock performs the configured action for childName, falling back to
// a plain Lock if the platform cannot perform it.
func (e *Enforcer) EnforceLock(childName string) error {
	action := platform.LockAction(e.action)
	if !e.locker.Supports(action) {
		log.Warn("platform does not support configured lock action, falling back to lock", "action", e.action, "child", childName)
		action = platform.ActionLock
	}
	if err := e.locker.Lock(action); err != nil {
		wrapped := apperr.New(apperr.KindLockUnsupported, fmt.Sprintf("enforcing %s for %s", action, childName), err)
		log.Error("lock enforcement failed", "child", childName, "error", wrapped)
		return wrapped
	}
	log.Info("enforced lock action", "action", action, "child", childName)
	return nil
}

// SendWarning surfaces a minutes-remaining notification. Failures are
// logged and swallowed: they must never abort enforcement.
func (e *Enforcer) SendWarning(childName string, minutesRemaining uint32) {
	plural := "s"
	if minutesRemaining == 1 {
		plural = ""
	}
	message := fmt.Sprintf("%s, you have %d minute%s of computer time remaining. Please save your work.", childName, minutesRemaining, plural)
	if err := e.notifier.Notify("Time Limit Warning", message); err != nil {
		log.Warn("warning notification failed", "child", childName, "error", err)
	}
}

// SendFinalWarning surfaces the grace-period notification before a lock.
func (e *Enforcer) SendFinalWarning(childName string, graceSeconds uint64) {
	message := fmt.Sprintf("%s, your computer time has run out. The computer will lock in %d seconds.", childName, graceSeconds)
	if err := e.notifier.Notify("Time Limit Reached", message); err != nil {
		log.Warn("final warning notification failed", "child", childName, "error", err)
	}
}
