//go:build linux

package platform

import (
	"fmt"
	"os/exec"
)

// linuxLocker tries a chain of session-lock/logout/shutdown commands,
// grounded on original_source/src/time_limits/platform/linux.rs's
// lock_computer fallback chain: loginctl, xdg-screensaver,
// desktop-environment-specific tools, xscreensaver-command, i3lock, slock.
type linuxLocker struct{}

// NewLocker returns the Linux lock adaptor.
func NewLocker() Locker { return linuxLocker{} }

func lockCommandChain() [][]string {
	return [][]string{
		{"loginctl", "lock-session"},
		{"xdg-screensaver", "lock"},
		{"gnome-screensaver-command", "--lock"},
		{"xscreensaver-command", "-lock"},
		{"i3lock"},
		{"slock"},
	}
}

func (linuxLocker) Lock(action LockAction) error {
	switch action {
	case ActionLock:
		var lastErr error
		for _, cmd := range lockCommandChain() {
			if _, err := exec.LookPath(cmd[0]); err != nil {
				lastErr = err
				continue
			}
			if err := exec.Command(cmd[0], cmd[1:]...).Run(); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("no supported lock command found")
		}
		return fmt.Errorf("locking session: %w", lastErr)
	case ActionLogout:
		return exec.Command("loginctl", "terminate-session", "self").Run()
	case ActionShutdown:
		return exec.Command("systemctl", "poweroff").Run()
	default:
		return fmt.Errorf("unsupported lock action %q", action)
	}
}

func (linuxLocker) Supports(action LockAction) bool {
	switch action {
	case ActionLock, ActionLogout, ActionShutdown:
		return true
	default:
		return false
	}
}
