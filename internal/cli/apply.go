// Package cli implements the familypolicyd command surface: policy
// apply/check, config scaffolding, status reporting, and time-limits
// administration. Adapted from the teacher's flat flag.Bool dispatch in
// main.go and its box-drawn status report in internal/cli/commands.go,
// generalized into one subcommand per concern rather than one binary flag
// per feature.
package cli

import (
	"context"
	"fmt"

	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/daemon"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/reconcile"
	"github.com/emosenkis/family-policy/internal/state"
)

// RunApply loads the agent config at cfgPath and performs a single
// fetch-and-reconcile pass (or, with uninstall set, removes every
// currently-applied browser surface instead and, if every removal
// succeeded, deletes the applied-state file). dryRun suppresses any
// write to disk or to a browser surface.
func RunApply(cfgPath string, uninstall, dryRun bool) error {
	if cfgPath == "" {
		cfgPath = config.AgentConfigPath()
	}
	cfg, err := config.LoadAgentConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading agent config: %w", err)
	}

	adaptor, err := platform.AdaptorForOS()
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, adaptor)
	if err != nil {
		return fmt.Errorf("initializing daemon: %w", err)
	}

	if uninstall {
		applied := d.AppliedState()
		if dryRun {
			fmt.Println("dry run: would remove every currently-applied browser surface")
			return nil
		}
		errs := reconcile.Uninstall(applied.AppliedPolicies, adaptor)
		if len(errs) > 0 {
			return fmt.Errorf("uninstall finished with %d error(s): %v", len(errs), errs)
		}
		if err := state.DeleteAppliedState(); err != nil {
			return fmt.Errorf("deleting applied state: %w", err)
		}
		fmt.Println("all browser surfaces removed")
		return nil
	}

	if err := d.CheckNow(context.Background(), dryRun); err != nil {
		return err
	}
	if dryRun {
		fmt.Println("dry run complete: no surface or state file was modified")
	} else {
		fmt.Println("policy check complete")
	}
	return nil
}
