//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// macosLocker locks, logs out, or shuts down via osascript AppleScript,
// grounded on original_source/src/time_limits/platform/macos.rs's
// lock_computer.
type macosLocker struct{}

// NewLocker returns the macOS lock adaptor.
func NewLocker() Locker { return macosLocker{} }

func (macosLocker) Lock(action LockAction) error {
	script, ok := macosLockScripts[action]
	if !ok {
		return fmt.Errorf("unsupported lock action %q", action)
	}
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("running osascript for %s: %w", action, err)
	}
	return nil
}

var macosLockScripts = map[LockAction]string{
	ActionLock:     `tell application "System Events" to keystroke "q" using {control down, command down}`,
	ActionLogout:   `tell application "System Events" to log out`,
	ActionShutdown: `tell application "System Events" to shut down`,
}

func (macosLocker) Supports(action LockAction) bool {
	_, ok := macosLockScripts[action]
	return ok
}
