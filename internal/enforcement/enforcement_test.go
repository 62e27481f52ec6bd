package enforcement

import (
	"errors"
	"testing"

	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/platform"
)

type fakeLocker struct {
	supported map[platform.LockAction]bool
	called    []platform.LockAction
	failWith  error
}

func (f *fakeLocker) Lock(action platform.LockAction) error {
	f.called = append(f.called, action)
	return f.failWith
}

func (f *fakeLocker) Supports(action platform.LockAction) bool {
	return f.supported[action]
}

type fakeNotifier struct {
	calls []string
	err   error
}

func (f *fakeNotifier) Notify(title, message string) error {
	f.calls = append(f.calls, title+": "+message)
	return f.err
}

func TestEnforceLockUsesConfiguredAction(t *testing.T) {
	locker := &fakeLocker{supported: map[platform.LockAction]bool{platform.ActionShutdown: true}}
	e := New(locker, &fakeNotifier{}, config.ActionShutdown)
	if err := e.EnforceLock("Alice"); err != nil {
		t.Fatalf("EnforceLock: %v", err)
	}
	if len(locker.called) != 1 || locker.called[0] != platform.ActionShutdown {
		t.Errorf("expected shutdown invoked, got %v", locker.called)
	}
}

func TestEnforceLockFallsBackWhenUnsupported(t *testing.T) {
	locker := &fakeLocker{supported: map[platform.LockAction]bool{platform.ActionLock: true}}
	e := New(locker, &fakeNotifier{}, config.ActionShutdown)
	if err := e.EnforceLock("Alice"); err != nil {
		t.Fatalf("EnforceLock: %v", err)
	}
	if len(locker.called) != 1 || locker.called[0] != platform.ActionLock {
		t.Errorf("expected fallback to lock, got %v", locker.called)
	}
}

func TestEnforceLockReturnsWrappedError(t *testing.T) {
	locker := &fakeLocker{supported: map[platform.LockAction]bool{platform.ActionLock: true}, failWith: errors.New("boom")}
	e := New(locker, &fakeNotifier{}, config.ActionLock)
	if err := e.EnforceLock("Alice"); err == nil {
		t.Fatalf("expected error from failing locker")
	}
}

func TestSendWarningSwallowsNotifierError(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("dbus unavailable")}
	e := New(&fakeLocker{}, notifier, config.ActionLock)
	e.SendWarning("Alice", 5) // must not panic or propagate
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one notify call, got %d", len(notifier.calls))
	}
}

func TestSendWarningSingularPlural(t *testing.T) {
	notifier := &fakeNotifier{}
	e := New(&fakeLocker{}, notifier, config.ActionLock)
	e.SendWarning("Alice", 1)
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one call")
	}
	if got := notifier.calls[0]; got != "Time Limit Warning: Alice, you have 1 minute of computer time remaining. Please save your work." {
		t.Errorf("unexpected singular message: %q", got)
	}
}

func TestSendFinalWarning(t *testing.T) {
	notifier := &fakeNotifier{}
	e := New(&fakeLocker{}, notifier, config.ActionLock)
	e.SendFinalWarning("Alice", 60)
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one call")
	}
}
