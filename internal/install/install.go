// Package install manages the agent's system-service lifecycle: install,
// uninstall, start, stop. Grounded on the teacher's install/install.go
// (RunningAsRoot privilege check, log-prefixed progress messages) and
// original_source/src/commands/agent.rs's per-OS command dispatch
// (systemctl on Linux, launchctl on macOS, sc.exe on Windows).
package install

import "os"

// ServiceName is the name the agent registers under with the platform's
// service manager.
const ServiceName = "family-policy-agent"

// RunningAsRoot checks for root/administrator privileges. If real is true,
// the real (invoking) user ID is checked; otherwise the effective one,
// which differs under setuid or sudo.
func RunningAsRoot(real bool) bool {
	if real {
		return os.Getuid() == 0
	}
	return os.Geteuid() == 0
}
