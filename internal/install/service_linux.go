//go:build linux

package install

import (
	"fmt"
	"os/exec"
)

// Install enables the systemd unit (expected to already be placed at
// /etc/systemd/system/family-policy-agent.service by the package/binary
// installer) so it starts on boot.
func Install() error {
	if err := exec.Command("systemctl", "daemon-reload").Run(); err != nil {
		return fmt.Errorf("reloading systemd: %w", err)
	}
	if out, err := exec.Command("systemctl", "enable", ServiceName).CombinedOutput(); err != nil {
		return fmt.Errorf("enabling service: %w: %s", err, out)
	}
	return nil
}

// Uninstall stops and disables the systemd unit.
func Uninstall() error {
	_ = exec.Command("systemctl", "stop", ServiceName).Run()
	if out, err := exec.Command("systemctl", "disable", ServiceName).CombinedOutput(); err != nil {
		return fmt.Errorf("disabling service: %w: %s", err, out)
	}
	return nil
}

// Start starts the service.
func Start() error {
	if out, err := exec.Command("systemctl", "start", ServiceName).CombinedOutput(); err != nil {
		return fmt.Errorf("starting service: %w: %s", err, out)
	}
	return nil
}

// Stop stops the service.
func Stop() error {
	if out, err := exec.Command("systemctl", "stop", ServiceName).CombinedOutput(); err != nil {
		return fmt.Errorf("stopping service: %w: %s", err, out)
	}
	return nil
}

// StatusLine returns the one-line systemctl status summary for display.
func StatusLine() string {
	out, err := exec.Command("systemctl", "is-active", ServiceName).Output()
	if err != nil {
		return "inactive"
	}
	return string(out)
}
