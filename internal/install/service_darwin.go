//go:build darwin

package install

import (
	"fmt"
	"os/exec"
)

const launchDaemonPlist = "/Library/LaunchDaemons/com.family-policy.agent.plist"

// Install loads the LaunchDaemon plist (expected to already be placed at
// launchDaemonPlist) so the agent is started by launchd.
func Install() error {
	if out, err := exec.Command("launchctl", "load", launchDaemonPlist).CombinedOutput(); err != nil {
		return fmt.Errorf("loading launch daemon: %w: %s", err, out)
	}
	return nil
}

// Uninstall unloads the LaunchDaemon plist.
func Uninstall() error {
	if out, err := exec.Command("launchctl", "unload", launchDaemonPlist).CombinedOutput(); err != nil {
		return fmt.Errorf("unloading launch daemon: %w: %s", err, out)
	}
	return nil
}

// Start re-loads the daemon; launchd starts it immediately on load.
func Start() error { return Install() }

// Stop unloads the daemon.
func Stop() error { return Uninstall() }

// StatusLine reports whether launchd currently lists the daemon as loaded.
func StatusLine() string {
	out, err := exec.Command("launchctl", "list", "com.family-policy.agent").CombinedOutput()
	if err != nil {
		return "not loaded"
	}
	return string(out)
}
