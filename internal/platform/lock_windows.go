//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// windowsLocker locks, logs out, or shuts down via the Win32 session APIs,
// grounded on original_source/src/time_limits/platform/windows.rs's
// lock_computer (LockWorkStation/ExitWindowsEx).
type windowsLocker struct{}

// NewLocker returns the Windows lock adaptor.
func NewLocker() Locker { return windowsLocker{} }

var (
	modUser32           = windows.NewLazySystemDLL("user32.dll")
	procLockWorkStation = modUser32.NewProc("LockWorkStation")
	procExitWindowsEx   = modUser32.NewProc("ExitWindowsEx")
)

const (
	ewxLogoff   = 0x00000000
	ewxShutdown = 0x00000001
	ewxForce    = 0x00000004
)

func (windowsLocker) Lock(action LockAction) error {
	switch action {
	case ActionLock:
		ret, _, err := procLockWorkStation.Call()
		if ret == 0 {
			return fmt.Errorf("LockWorkStation failed: %w", err)
		}
		return nil
	case ActionLogout:
		ret, _, err := procExitWindowsEx.Call(uintptr(ewxLogoff|ewxForce), 0)
		if ret == 0 {
			return fmt.Errorf("ExitWindowsEx(logoff) failed: %w", err)
		}
		return nil
	case ActionShutdown:
		ret, _, err := procExitWindowsEx.Call(uintptr(ewxShutdown|ewxForce), 0)
		if ret == 0 {
			return fmt.Errorf("ExitWindowsEx(shutdown) failed: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported lock action %q", action)
	}
}

func (windowsLocker) Supports(action LockAction) bool {
	switch action {
	case ActionLock, ActionLogout, ActionShutdown:
		return true
	default:
		return false
	}
}
