//go:build !windows

package admin

import "os"

// IsPrivileged reports whether the current process may perform mutating
// operations: effective UID 0 on Unix.
func IsPrivileged() bool {
	return os.Geteuid() == 0
}
