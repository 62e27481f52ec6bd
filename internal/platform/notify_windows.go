//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

// windowsNotifier surfaces a toast notification via a PowerShell
// BurntToast-style script, grounded on
// original_source/src/time_limits/enforcement.rs's
// send_system_notification (the original just logs a warning on Windows;
// this implementation closes that gap using the same
// os/exec-a-shell-helper idiom the Linux/macOS notifiers use).
type windowsNotifier struct{}

// NewNotifier returns the Windows desktop notifier.
func NewNotifier() Notifier { return windowsNotifier{} }

const toastTemplate = `
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.UI.Notifications.ToastNotification, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$template = @"
<toast><visual><binding template="ToastGeneric"><text>%s</text><text>%s</text></binding></visual></toast>
"@
$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml($template)
$toast = New-Object Windows.UI.Notifications.ToastNotification $xml
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("FamilyPolicyAgent").Show($toast)
`

func (windowsNotifier) Notify(title, message string) error {
	script := fmt.Sprintf(toastTemplate, escapeXML(title), escapeXML(message))
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running powershell toast notification: %w", err)
	}
	return nil
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
