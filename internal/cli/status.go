package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/state"
)

// RunStatus formats a human-readable runtime status report from the
// persisted AppliedState and, if present, TrackerState — both read
// directly off disk so this works whether or not the daemon is currently
// running. Box-drawing header kept from the teacher's
// internal/cli/commands.go GetStatusResponse.
func RunStatus() (string, error) {
	var b strings.Builder
	b.WriteString("╔════════════════════════════════════════════════╗\n")
	b.WriteString("║              FAMILY POLICY STATUS               ║\n")
	b.WriteString("╚════════════════════════════════════════════════╝\n\n")
	b.WriteString(fmt.Sprintf("Current time: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	applied, err := state.LoadAppliedState()
	switch {
	case err != nil:
		b.WriteString(fmt.Sprintf("Applied policy state: unavailable (%v)\n", err))
	case applied == nil:
		b.WriteString("Applied policy state: no policy has been applied yet\n")
	default:
		b.WriteString("Applied policy state:\n")
		b.WriteString(fmt.Sprintf("  config hash: %s\n", applied.ConfigHash))
		b.WriteString(fmt.Sprintf("  last updated: %s\n", formatTime(applied.LastUpdated)))
		b.WriteString(fmt.Sprintf("  last checked: %s\n", formatTime(applied.LastChecked)))
		for _, br := range []string{"chrome", "firefox", "edge"} {
			b.WriteString(fmt.Sprintf("  %s: %s\n", br, browserSummary(applied.AppliedPolicies, br)))
		}
	}
	b.WriteString("\n")

	tracker, err := state.LoadTrackerState()
	if err != nil {
		b.WriteString(fmt.Sprintf("Time-limits tracking: unavailable (%v)\n", err))
		return b.String(), nil
	}
	if tracker == nil {
		b.WriteString("Time-limits tracking: not yet initialized\n")
		return b.String(), nil
	}
	b.WriteString("Time-limits tracking:\n")
	for id, child := range tracker.Children {
		locked := "no"
		if child.Today.IsLocked() {
			locked = "yes"
		}
		b.WriteString(fmt.Sprintf("  %s (%s): used %ds today, locked=%s\n", child.Name, id, child.Today.UsedSeconds, locked))
	}
	return b.String(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func browserSummary(p state.AppliedPolicies, name string) string {
	var bs *state.BrowserState
	switch name {
	case "chrome":
		bs = p.Chrome
	case "firefox":
		bs = p.Firefox
	case "edge":
		bs = p.Edge
	}
	if bs == nil || bs.IsEmpty() {
		return "no policy applied"
	}
	return fmt.Sprintf("%d extension(s) managed", len(bs.Extensions))
}

// RunShowConfig loads and prints the agent config at cfgPath (or the
// platform default) in a redacted, human-readable form.
func RunShowConfig(cfgPath string) (string, error) {
	if cfgPath == "" {
		cfgPath = config.AgentConfigPath()
	}
	cfg, err := config.LoadAgentConfig(cfgPath)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "policy_url: %s\n", cfg.GitHub.PolicyURL)
	fmt.Fprintf(&b, "poll_interval: %ds (jitter %ds)\n", cfg.Agent.PollInterval, cfg.Agent.PollJitter)
	fmt.Fprintf(&b, "retry_interval: %ds (max %d retries)\n", cfg.Agent.RetryInterval, cfg.Agent.MaxRetries)
	fmt.Fprintf(&b, "log level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(&b, "time_limits enabled: %v\n", cfg.TimeLimits.Enabled)
	return b.String(), nil
}
