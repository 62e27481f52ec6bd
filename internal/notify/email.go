// Package notify sends admin-facing email copies of time-limit warning and
// final-warning notifications (the lock action itself sends none),
// repurposed from the teacher's internal/notify/email.go
// accountability-report mailer. It implements the same
// platform.Notifier interface the tracker uses for desktop toasts, so a
// daemon can fan an event out to both.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/logging"
)

var log = logging.For("notify")

// EmailNotifier sends HTML email alerts via Mailgun, rate limited per
// subject line so a flapping condition cannot flood the admin's inbox.
type EmailNotifier struct {
	cfg      config.AdminAlertConfig
	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// NewEmailNotifier builds a notifier from the daemon's admin-alert config.
func NewEmailNotifier(cfg config.AdminAlertConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, lastSent: make(map[string]time.Time), now: time.Now}
}

// Notify sends subject/message as an HTML email. A no-op when alerting is
// disabled or the subject was sent within the cooldown window.
func (e *EmailNotifier) Notify(subject, message string) error {
	if !e.cfg.Enabled {
		return nil
	}

	cooldown := time.Duration(e.cfg.CooldownMinutes) * time.Minute
	if cooldown <= 0 {
		cooldown = time.Duration(config.DefaultAdminAlertCooldownMinutes) * time.Minute
	}

	e.mu.Lock()
	now := e.now()
	if last, ok := e.lastSent[subject]; ok && now.Sub(last) < cooldown {
		e.mu.Unlock()
		log.Debug("email alert rate limited", "subject", subject, "since_last", now.Sub(last))
		return nil
	}
	e.lastSent[subject] = now
	e.mu.Unlock()

	mg := mailgun.NewMailgun(e.cfg.MailgunDomain, e.cfg.MailgunAPIKey)
	mail := mailgun.NewMessage(e.cfg.FromEmail, subject, message, e.cfg.AdminEmail)
	mail.SetHTML(renderHTML(subject, message))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, _, err := mg.Send(ctx, mail); err != nil {
		return fmt.Errorf("sending admin alert email: %w", err)
	}
	return nil
}

// renderHTML converts a plain-text alert body into a styled HTML email,
// adapted from the teacher's GenerateHTMLEmail.
func renderHTML(subject, plainBody string) string {
	body := strings.ReplaceAll(plainBody, "&", "&amp;")
	body = strings.ReplaceAll(body, "<", "&lt;")
	body = strings.ReplaceAll(body, ">", "&gt;")
	body = strings.ReplaceAll(body, "\n", "<br>")

	icon, color := "ℹ️", "#1976d2"
	switch {
	case strings.Contains(strings.ToLower(subject), "tamper"):
		icon, color = "⚠️", "#d32f2f"
	case strings.Contains(strings.ToLower(subject), "lock"):
		icon, color = "\U0001f512", "#d32f2f"
	case strings.Contains(strings.ToLower(subject), "warning"):
		icon, color = "⏰", "#f57c00"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:white;border-radius:8px;overflow:hidden;">
    <div style="background:%s;color:white;padding:20px;text-align:center;">
      <span style="font-size:36px;">%s</span>
      <h2 style="margin:10px 0 0;">%s</h2>
    </div>
    <div style="padding:20px;">
      <p>%s</p>
      <p style="color:#666;font-size:13px;">Generated: %s</p>
    </div>
  </div>
</body>
</html>`, color, icon, subject, body, time.Now().Format("2006-01-02 15:04:05"))
}
