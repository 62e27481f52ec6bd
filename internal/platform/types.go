// Package platform implements the three per-browser policy-surface
// adaptors (Windows registry, macOS managed-preferences plist, Linux JSON
// policy files) and the cross-platform lock adaptor, per spec.md §4.7.
package platform

import "github.com/emosenkis/family-policy/internal/browser"

// ExtensionInstall is one forced-install entry: an extension id paired
// with the update/install URL the browser fetches it from.
type ExtensionInstall struct {
	ID  string
	URL string
}

// Surface is the desired policy state for one browser, as translated by
// the reconciler from a PolicyDocument entry. Only the fields relevant to
// the target browser are populated by the caller; adaptors ignore fields
// that browser doesn't support (e.g. Firefox has no guest-mode policy).
type Surface struct {
	Extensions         []ExtensionInstall
	DisablePrivateMode *bool
	DisableGuestMode   *bool
	// ExtensionSettings carries each extension's free-form settings map, by
	// id, for the Windows ("...\3rdparty\extensions\{id}\policy") and
	// macOS (separate "{bundle_id}.extensions.{id}.plist") surfaces that
	// spec.md §4.7 documents per-extension settings storage for.
	ExtensionSettings map[string]map[string]interface{}
}

// IsEmpty reports whether this surface carries nothing to apply, in which
// case the reconciler removes the browser's surface instead.
func (s Surface) IsEmpty() bool {
	return len(s.Extensions) == 0 && s.DisablePrivateMode == nil && s.DisableGuestMode == nil
}

// Adaptor applies or removes a Surface for one browser on the local
// operating system's policy surface.
type Adaptor interface {
	// Apply idempotently writes surface for b: on Windows this means
	// deleting-then-rewriting numbered registry values; on macOS and Linux
	// it means a read-modify-write (macOS) or full rewrite (Linux) of the
	// managed policy document.
	Apply(b browser.Browser, surface Surface) error
	// Remove deletes the forced-extension list and privacy flags this tool
	// applied for b (on Linux, the whole policy file). Per-extension
	// settings are not removed: the Windows 3rdparty\extensions keys and
	// the macOS per-extension plists stay in place. Not-found is treated
	// as success.
	Remove(b browser.Browser) error
}

// LockAction is one of the three actions the enforcer can invoke.
type LockAction string

const (
	ActionLock     LockAction = "lock"
	ActionLogout   LockAction = "logout"
	ActionShutdown LockAction = "shutdown"
)

// Locker invokes a platform-specific workstation lock/logout/shutdown.
type Locker interface {
	// Lock performs action, blocking until the OS call returns (this call
	// is not cancellable, per spec.md §5).
	Lock(action LockAction) error
	// Supports reports whether this platform can perform action at all.
	Supports(action LockAction) bool
}

// Notifier surfaces a system notification to the logged-in user.
type Notifier interface {
	Notify(title, message string) error
}
