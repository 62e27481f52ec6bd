package cli

import (
	"fmt"
	"strings"

	"github.com/emosenkis/family-policy/internal/admin"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/ipc"
	"github.com/emosenkis/family-policy/internal/state"
)

// RunTimeLimitsInit writes a starter time-limits config with the given
// admin password, refusing to overwrite an existing file unless force.
func RunTimeLimitsInit(path, adminPassword string, force bool) error {
	path = config.TimeLimitsConfigPath(path)
	if !force {
		if _, err := config.LoadTimeLimitsConfig(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	hash, err := admin.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	cfg := &config.TimeLimitsConfig{
		Admin:       config.AdminConfig{PasswordHash: hash},
		SharedLogin: config.DefaultSharedLoginConfig(),
		Enforcement: config.DefaultEnforcementConfig(),
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("writing starter time-limits config: %w", err)
	}
	fmt.Printf("Wrote starter time-limits config to %s\n", path)
	fmt.Println("Add children with 'familypolicyd time-limits add-child'.")
	return nil
}

// RunTimeLimitsAddChild appends a new child profile with the spec's
// default warnings/grace period to the time-limits config at path.
func RunTimeLimitsAddChild(path, id, name string, osUsers []string, weekdayHours, weekendHours uint32) error {
	path = config.TimeLimitsConfigPath(path)
	cfg, err := config.LoadTimeLimitsConfig(path)
	if err != nil {
		return fmt.Errorf("loading time-limits config: %w", err)
	}
	for _, c := range cfg.Children {
		if c.ID == id {
			return fmt.Errorf("a child with id %q already exists", id)
		}
	}
	cfg.Children = append(cfg.Children, config.ChildProfile{
		ID:      id,
		Name:    name,
		OSUsers: osUsers,
		Limits: config.TimeLimitSchedule{
			Weekday: config.TimeLimit{Hours: weekdayHours},
			Weekend: config.TimeLimit{Hours: weekendHours},
		},
		Warnings:    config.DefaultWarnings(),
		GracePeriod: config.DefaultGracePeriod,
	})
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving time-limits config: %w", err)
	}
	fmt.Printf("Added child %q (%s)\n", name, id)
	return nil
}

// RunTimeLimitsSetPassword rehashes the admin password in place.
func RunTimeLimitsSetPassword(path, newPassword string) error {
	path = config.TimeLimitsConfigPath(path)
	cfg, err := config.LoadTimeLimitsConfig(path)
	if err != nil {
		return fmt.Errorf("loading time-limits config: %w", err)
	}
	hash, err := admin.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	cfg.Admin.PasswordHash = hash
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving time-limits config: %w", err)
	}
	fmt.Println("Admin password updated.")
	return nil
}

// RunTimeLimitsHistory prints the last 90 days of recorded usage for
// childID.
func RunTimeLimitsHistory(childID string) (string, error) {
	history, err := state.LoadUsageHistory()
	if err != nil {
		return "", fmt.Errorf("loading usage history: %w", err)
	}
	if history == nil {
		return "no usage history recorded yet\n", nil
	}
	records := history.GetChildRecords(childID)
	if len(records) == 0 {
		return fmt.Sprintf("no history recorded for child %q\n", childID), nil
	}
	var b strings.Builder
	for i, day := range history.Records {
		for _, c := range day.Children {
			if c.ChildID != childID {
				continue
			}
			fmt.Fprintf(&b, "%s: used %ds", day.Date, c.UsedSeconds)
			if len(c.Overrides) > 0 {
				fmt.Fprintf(&b, " (%d admin override(s))", len(c.Overrides))
			}
			b.WriteString("\n")
		}
		if i >= state.MaxHistoryEntries {
			break
		}
	}
	return b.String(), nil
}

// RunTimeLimitsGrantExtension dispatches a grant-extension command to the
// running daemon's admin socket.
func RunTimeLimitsGrantExtension(socketPath, childID string, minutes uint32, adminPassword, reason string) (string, error) {
	cmd := fmt.Sprintf("grant-extension:%s:%d:%s:%s", childID, minutes, adminPassword, reason)
	return ipc.SendCommand(socketPath, cmd)
}

// RunTimeLimitsResetTime dispatches a reset-time command to the running
// daemon's admin socket.
func RunTimeLimitsResetTime(socketPath, childID, adminPassword string) (string, error) {
	cmd := fmt.Sprintf("reset-time:%s:%s", childID, adminPassword)
	return ipc.SendCommand(socketPath, cmd)
}

// RunTimeLimitsStatus dispatches a status command to the running daemon's
// admin socket.
func RunTimeLimitsStatus(socketPath string) (string, error) {
	return ipc.SendCommand(socketPath, "status")
}
