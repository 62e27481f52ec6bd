// Package apperr defines the error kinds the daemon loop and reconciler
// distinguish when deciding whether to retry, log-and-continue, or abort.
package apperr

import "errors"

// Kind classifies an error for retry/propagation policy.
type Kind int

const (
	// KindConfigInvalid signals a YAML/TOML parse or validation failure.
	// Never retried.
	KindConfigInvalid Kind = iota
	// KindRemoteTransient signals a network timeout or 5xx. Retried with backoff.
	KindRemoteTransient
	// KindRemotePermanent signals 401/403. Logged; loop continues next poll.
	KindRemotePermanent
	// KindRemoteNotFound signals 404. Same policy as permanent, distinguished
	// in status output.
	KindRemoteNotFound
	// KindSurfaceApply signals a registry/plist/JSON write failure for one
	// browser surface. Other surfaces are still attempted.
	KindSurfaceApply
	// KindStatePersist signals disk-full/permission on state write. Fatal to
	// the current iteration.
	KindStatePersist
	// KindPrivilegeInsufficient signals a non-root/non-admin caller for a
	// mutating operation.
	KindPrivilegeInsufficient
	// KindAuthFailed signals a rejected admin password.
	KindAuthFailed
	// KindLockUnsupported signals the platform cannot perform the requested
	// lock action; caller should fall back to Lock.
	KindLockUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindConfigInvalid:
		return "config_invalid"
	case KindRemoteTransient:
		return "remote_transient"
	case KindRemotePermanent:
		return "remote_permanent"
	case KindRemoteNotFound:
		return "remote_not_found"
	case KindSurfaceApply:
		return "surface_apply"
	case KindStatePersist:
		return "state_persist"
	case KindPrivilegeInsufficient:
		return "privilege_insufficient"
	case KindAuthFailed:
		return "auth_failed"
	case KindLockUnsupported:
		return "lock_unsupported"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind so callers can branch on
// retry/propagation policy via errors.As without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Retryable reports whether the daemon's exponential-backoff retry should
// be attempted for this error within the current iteration.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindRemoteTransient
	}
	return false
}
