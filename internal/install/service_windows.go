//go:build windows

package install

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const windowsServiceName = "FamilyPolicyAgent"

// Install registers FamilyPolicyAgent as an auto-start Windows service
// running this executable with `start --no-daemon`, and configures
// restart-on-failure recovery.
func Install() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	binPath := fmt.Sprintf("\"%s\" start --no-daemon", exe)

	out, err := exec.Command("sc.exe", "create", windowsServiceName,
		"binPath= "+binPath,
		"start= auto",
		"DisplayName= Family Policy Agent",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("creating service: %w: %s", err, out)
	}

	_, _ = exec.Command("sc.exe", "description", windowsServiceName,
		"Browser policy and screen-time enforcement agent").CombinedOutput()
	_, _ = exec.Command("sc.exe", "failure", windowsServiceName,
		"reset= 86400",
		"actions= restart/10000/restart/10000/restart/10000",
	).CombinedOutput()
	return nil
}

// Uninstall stops and deletes the Windows service. Absence of a
// pre-existing service is not an error.
func Uninstall() error {
	_, _ = exec.Command("sc.exe", "stop", windowsServiceName).CombinedOutput()
	out, err := exec.Command("sc.exe", "delete", windowsServiceName).CombinedOutput()
	if err != nil && !strings.Contains(string(out), "does not exist") {
		return fmt.Errorf("removing service: %w: %s", err, out)
	}
	return nil
}

// Start starts the registered service.
func Start() error {
	out, err := exec.Command("sc.exe", "start", windowsServiceName).CombinedOutput()
	if err != nil && !strings.Contains(string(out), "already started") {
		return fmt.Errorf("starting service: %w: %s", err, out)
	}
	return nil
}

// Stop stops the service.
func Stop() error {
	out, err := exec.Command("sc.exe", "stop", windowsServiceName).CombinedOutput()
	if err != nil {
		return fmt.Errorf("stopping service: %w: %s", err, out)
	}
	return nil
}

// StatusLine returns sc.exe's query output for display.
func StatusLine() string {
	out, err := exec.Command("sc.exe", "query", windowsServiceName).CombinedOutput()
	if err != nil {
		return "not installed"
	}
	return string(out)
}
