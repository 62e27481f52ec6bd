package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/daemon"
	"github.com/emosenkis/family-policy/internal/enforcement"
	"github.com/emosenkis/family-policy/internal/ipc"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/notify"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/selfprotect"
	"github.com/emosenkis/family-policy/internal/state"
	"github.com/emosenkis/family-policy/internal/tracker"
)

var log = logging.For("cli")

// RunForeground wires up the policy daemon, the optional time-limits
// tracker, the admin IPC socket, and the optional self-protection
// watchdog, then blocks until SIGINT/SIGTERM. Grounded on
// original_source/src/agent/daemon.rs's top-level run loop and the
// teacher's signal-handling main().
func RunForeground(cfgPath string) error {
	if cfgPath == "" {
		cfgPath = config.AgentConfigPath()
	}
	cfg, err := config.LoadAgentConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading agent config: %w", err)
	}
	logging.Setup(cfg.Logging.Level)

	adaptor, err := platform.AdaptorForOS()
	if err != nil {
		return err
	}
	d, err := daemon.New(cfg, adaptor)
	if err != nil {
		return fmt.Errorf("initializing daemon: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var t *tracker.Tracker
	if cfg.TimeLimits.Enabled {
		t, err = buildTracker(cfg)
		if err != nil {
			return fmt.Errorf("initializing time-limits tracker: %w", err)
		}
		if err := t.Start(); err != nil {
			return fmt.Errorf("starting tracker: %w", err)
		}
		defer t.Stop()
	}

	server := ipc.New("", t, d)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting admin socket: %w", err)
	}
	defer server.Stop()

	if cfg.TimeLimits.Enabled {
		if watchdog := buildSelfProtectWatchdog(cfg, t); watchdog != nil {
			go watchdog.Run(ctx)
		}
	}

	log.Info("family-policy agent running", "policy_url", cfg.GitHub.PolicyURL, "time_limits_enabled", cfg.TimeLimits.Enabled)
	if err := d.Run(ctx); err != nil {
		return err
	}
	log.Info("family-policy agent shutting down")
	return nil
}

func buildTracker(cfg *config.AgentConfig) (*tracker.Tracker, error) {
	tlPath := config.TimeLimitsConfigPath(cfg.TimeLimits.ConfigPath)
	tlCfg, err := config.LoadTimeLimitsConfig(tlPath)
	if err != nil {
		return nil, err
	}

	st, err := state.LoadTrackerState()
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = state.NewTrackerState(time.Now())
	}

	history, err := state.LoadUsageHistory()
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = state.NewUsageHistory()
	}

	var notifiers []platform.Notifier
	notifiers = append(notifiers, platform.NewNotifier())
	if cfg.AdminAlert.Enabled {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.AdminAlert))
	}

	enf := enforcement.New(platform.NewLocker(), fanOutNotifier(notifiers), tlCfg.Enforcement.Action)
	return tracker.New(tlCfg, st, history, enf), nil
}

// fanOutNotifier delivers a Notify call to every backing notifier,
// logging (not aborting on) any that fail — the same partial-success
// policy internal/reconcile uses for per-browser apply failures.
type fanOutNotifier []platform.Notifier

func (n fanOutNotifier) Notify(title, message string) error {
	var firstErr error
	for _, backing := range n {
		if err := backing.Notify(title, message); err != nil {
			log.Warn("notifier failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func buildSelfProtectWatchdog(cfg *config.AgentConfig, t *tracker.Tracker) *selfprotect.Watchdog {
	tlCfg := t.GetConfig()
	if !tlCfg.Enforcement.SelfProtection {
		return nil
	}
	paths := []string{
		config.AgentConfigPath(),
		config.TimeLimitsConfigPath(cfg.TimeLimits.ConfigPath),
	}
	return selfprotect.New(paths, selfprotect.DefaultCheckInterval, platform.NewNotifier())
}
