// Package daemon drives the agent's main loop: conditional-fetch the
// remote PolicyDocument, reconcile it onto the local browser surfaces, and
// persist the result, on a jittered schedule with exponential-backoff
// retry. Grounded on original_source/src/agent/daemon.rs's
// run_agent_daemon and check_and_apply_with_retry.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emosenkis/family-policy/internal/apperr"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/reconcile"
	"github.com/emosenkis/family-policy/internal/remote"
	"github.com/emosenkis/family-policy/internal/scheduler"
	"github.com/emosenkis/family-policy/internal/state"
)

var log = logging.For("daemon")

// fetcher is the subset of *remote.Client the daemon depends on, narrowed
// to an interface so tests can substitute a fake without standing up a TLS
// server.
type fetcher interface {
	Fetch(ctx context.Context, etag string) (*remote.FetchResult, error)
}

// Daemon owns the remote client, policy-surface adaptor, and scheduler for
// one machine, and serializes access to the AppliedState it mutates every
// iteration.
type Daemon struct {
	cfg       *config.AgentConfig
	client    fetcher
	adaptor   platform.Adaptor
	scheduler *scheduler.Scheduler

	mu      sync.Mutex
	applied *state.AppliedState

	// persist saves the AppliedState; overridden in tests to avoid writing
	// to the fixed production path.
	persist func(*state.AppliedState) error
}

// New builds a Daemon from cfg, talking to adaptor for surface writes.
func New(cfg *config.AgentConfig, adaptor platform.Adaptor) (*Daemon, error) {
	client, err := remote.New(cfg.GitHub.PolicyURL, cfg.GitHub.AccessToken)
	if err != nil {
		return nil, err
	}

	applied, err := state.LoadAppliedState()
	if err != nil {
		return nil, fmt.Errorf("loading applied state: %w", err)
	}
	if applied == nil {
		applied = state.NewAppliedState()
	}

	return &Daemon{
		cfg:       cfg,
		client:    client,
		adaptor:   adaptor,
		scheduler: scheduler.New(cfg.Agent.PollInterval, cfg.Agent.PollJitter),
		applied:   applied,
		persist:   state.SaveAppliedState,
	}, nil
}

// Run polls until ctx is cancelled, sleeping a jittered interval between
// iterations. Per-iteration errors are logged and never stop the loop —
// only context cancellation does.
func (d *Daemon) Run(ctx context.Context) error {
	log.Info("daemon starting", "policy_url", d.cfg.GitHub.PolicyURL, "poll_interval", d.cfg.Agent.PollInterval)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.CheckNow(ctx, false); err != nil {
			log.Error("poll iteration failed", "error", err)
		}

		if err := d.scheduler.SleepUntilNextPoll(ctx); err != nil {
			log.Info("daemon stopping", "reason", err)
			return nil
		}
	}
}

// CheckNow runs exactly one fetch-and-reconcile iteration. dryRun bypasses
// every surface write and state persistence, reporting what would change
// without touching anything — the CLI's `check-now --dry-run` and `apply
// --dry-run` both go through here.
func (d *Daemon) CheckNow(ctx context.Context, dryRun bool) error {
	d.mu.Lock()
	applied := *d.applied
	d.mu.Unlock()

	result, err := d.fetchWithRetry(ctx, applied.ETag)
	if err != nil {
		return err
	}

	now := time.Now()
	if result.NotModified {
		log.Debug("policy document not modified")
		if !dryRun {
			d.updateCheckedAt(now)
		}
		return nil
	}

	doc, err := config.ParsePolicyDocument(result.Content)
	if err != nil {
		return apperr.New(apperr.KindConfigInvalid, "parsing fetched policy document", err)
	}

	applyResult := reconcile.Apply(doc, result.Content, applied.ConfigHash, applied.AppliedPolicies, d.adaptor, dryRun)
	if applyResult.Unchanged {
		log.Debug("policy content unchanged by hash")
	} else {
		log.Info("policy reconciled", "errors", len(applyResult.Errors))
	}

	if !dryRun {
		d.commit(result, applyResult, now)
	}

	if len(applyResult.Errors) > 0 {
		return fmt.Errorf("%d browser surface(s) failed to apply: %w", len(applyResult.Errors), errors.Join(applyResult.Errors...))
	}
	return nil
}

// commit persists the new AppliedState after a successful (or
// partially-successful) apply.
func (d *Daemon) commit(result *remote.FetchResult, applyResult reconcile.Result, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !applyResult.Unchanged {
		d.applied.ConfigHash = reconcile.Hash(result.Content)
		d.applied.AppliedPolicies = applyResult.AppliedPolicies
		d.applied.LastUpdated = now
	}
	d.applied.ETag = result.ETag
	d.applied.LastChecked = now
	if err := d.persist(d.applied); err != nil {
		log.Error("saving applied state failed", "error", err)
	}
}

func (d *Daemon) updateCheckedAt(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied.LastChecked = now
	if err := d.persist(d.applied); err != nil {
		log.Error("saving applied state failed", "error", err)
	}
}

// fetchWithRetry issues the conditional fetch, retrying KindRemoteTransient
// failures with exponential backoff: retry_interval * 2^(attempt-1),
// capped at max_retries attempts.
func (d *Daemon) fetchWithRetry(ctx context.Context, etag string) (*remote.FetchResult, error) {
	result, err := d.client.Fetch(ctx, etag)
	if err == nil {
		return result, nil
	}
	if !apperr.Retryable(err) {
		return nil, err
	}

	for attempt := uint32(1); attempt <= d.cfg.Agent.MaxRetries; attempt++ {
		backoff := time.Duration(d.cfg.Agent.RetryInterval) * time.Second * time.Duration(uint64(1)<<(attempt-1))
		log.Warn("retrying after transient remote failure", "attempt", attempt, "backoff", backoff, "error", err)
		if sleepErr := scheduler.Sleep(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
		result, err = d.client.Fetch(ctx, etag)
		if err == nil {
			return result, nil
		}
		if !apperr.Retryable(err) {
			return nil, err
		}
	}
	return nil, err
}

// AppliedState returns a snapshot of the daemon's current applied state,
// for the status CLI command.
func (d *Daemon) AppliedState() state.AppliedState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.applied
}
