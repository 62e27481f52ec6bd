package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/emosenkis/family-policy/internal/config"
)

func TestNotifyDisabledIsNoop(t *testing.T) {
	n := NewEmailNotifier(config.AdminAlertConfig{Enabled: false})
	if err := n.Notify("Lock", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestNotifyRateLimitsRepeatSubject(t *testing.T) {
	n := NewEmailNotifier(config.AdminAlertConfig{Enabled: true, CooldownMinutes: 15})
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }

	n.lastSent["Lock"] = clock
	clock = clock.Add(1 * time.Minute)
	n.now = func() time.Time { return clock }

	// Still within cooldown: Notify must not attempt to send (which would
	// fail against the fake mailgun domain) and must not panic.
	if err := n.Notify("Lock", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := n.lastSent["Lock"]; !got.Equal(clock.Add(-1 * time.Minute)) {
		t.Errorf("rate-limited send should not update lastSent, got %v", got)
	}
}

func TestRenderHTMLPicksIconBySubject(t *testing.T) {
	html := renderHTML("Time Limit Reached - Lock Engaged", "Alice is out of time")
	if !strings.Contains(html, "Alice is out of time") || !strings.Contains(html, "Time Limit Reached - Lock Engaged") {
		t.Errorf("expected rendered HTML to include subject and body, got: %s", html)
	}
}
