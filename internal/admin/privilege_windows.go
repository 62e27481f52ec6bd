//go:build windows

package admin

import "golang.org/x/sys/windows"

// IsPrivileged reports whether the current process token carries
// TokenIsElevated, per spec.md §4.9.
func IsPrivileged() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
