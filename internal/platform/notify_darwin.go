//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

// macosNotifier surfaces a notification via osascript's "display
// notification", grounded on original_source/src/time_limits/enforcement.rs's
// send_system_notification.
type macosNotifier struct{}

// NewNotifier returns the macOS desktop notifier.
func NewNotifier() Notifier { return macosNotifier{} }

func (macosNotifier) Notify(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, escapeAppleScript(message), escapeAppleScript(title))
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("running osascript notification: %w", err)
	}
	return nil
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
