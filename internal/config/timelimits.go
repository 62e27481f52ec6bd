package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// TimeLimitsConfig is the YAML configuration describing children, their
// schedules, shared-login behavior, and enforcement action.
type TimeLimitsConfig struct {
	Admin        AdminConfig       `yaml:"admin"`
	Children     []ChildProfile    `yaml:"children"`
	SharedLogin  SharedLoginConfig `yaml:"shared_login"`
	Enforcement  EnforcementConfig `yaml:"enforcement"`
}

// AdminConfig holds the stored password hash and OS accounts exempt from
// tracking.
type AdminConfig struct {
	PasswordHash  string   `yaml:"password_hash"`
	AdminAccounts []string `yaml:"admin_accounts,omitempty"`
}

// ChildProfile configures one tracked child.
type ChildProfile struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	OSUsers     []string          `yaml:"os_users,omitempty"`
	Limits      TimeLimitSchedule `yaml:"limits"`
	Warnings    []uint32          `yaml:"warnings"`
	GracePeriod uint64            `yaml:"grace_period"`
}

// DefaultWarnings matches the original tool's default thresholds.
func DefaultWarnings() []uint32 { return []uint32{15, 5, 1} }

// DefaultGracePeriod matches the original tool's default (seconds).
const DefaultGracePeriod = uint64(60)

// TimeLimitSchedule names weekday/weekend limits plus custom-day overrides.
type TimeLimitSchedule struct {
	Weekday TimeLimit        `yaml:"weekday"`
	Weekend TimeLimit        `yaml:"weekend"`
	Custom  []CustomDayLimit `yaml:"custom,omitempty"`
}

// TimeLimit is an hours+minutes budget.
type TimeLimit struct {
	Hours   uint32 `yaml:"hours"`
	Minutes uint32 `yaml:"minutes"`
}

// ToSeconds converts the budget to whole seconds.
func (t TimeLimit) ToSeconds() int64 {
	return int64(t.Hours)*3600 + int64(t.Minutes)*60
}

// TimeLimitFromSeconds builds a TimeLimit from a second count.
func TimeLimitFromSeconds(seconds int64) TimeLimit {
	return TimeLimit{Hours: uint32(seconds / 3600), Minutes: uint32((seconds % 3600) / 60)}
}

// CustomDayLimit overrides the schedule for a named set of weekdays.
type CustomDayLimit struct {
	Days  []string  `yaml:"days"`
	Limit TimeLimit `yaml:",inline"`
}

// SharedLoginConfig controls shared-account session selection.
type SharedLoginConfig struct {
	Enabled             bool     `yaml:"enabled"`
	SharedAccounts      []string `yaml:"shared_accounts,omitempty"`
	RequireSelection    bool     `yaml:"require_selection"`
	AllowSwitching      bool     `yaml:"allow_switching"`
	AutoSelectIfUnique  bool     `yaml:"auto_select_if_unique"`
}

// DefaultSharedLoginConfig matches the original tool's defaults
// (require_selection true, everything else false).
func DefaultSharedLoginConfig() SharedLoginConfig {
	return SharedLoginConfig{RequireSelection: true}
}

// LockAction names what the enforcer does when a budget is exhausted.
type LockAction string

const (
	ActionLock     LockAction = "lock"
	ActionLogout   LockAction = "logout"
	ActionShutdown LockAction = "shutdown"
)

// EnforcementConfig controls the action taken and reserved tamper-resistance
// toggles.
type EnforcementConfig struct {
	Action                  LockAction `yaml:"action"`
	PreventTimeManipulation bool       `yaml:"prevent_time_manipulation"`
	RequireAdminToQuit      bool       `yaml:"require_admin_to_quit"`
	SelfProtection          bool       `yaml:"self_protection"`
}

// DefaultEnforcementConfig matches the original tool's defaults.
func DefaultEnforcementConfig() EnforcementConfig {
	return EnforcementConfig{
		Action:                  ActionLock,
		PreventTimeManipulation: true,
		RequireAdminToQuit:      true,
		SelfProtection:          true,
	}
}

// TimeLimitsConfigPath returns the fixed, platform-specific config path,
// unless overridden by AgentConfig.TimeLimits.ConfigPath.
func TimeLimitsConfigPath(override string) string {
	if override != "" {
		return override
	}
	switch runtime.GOOS {
	case "darwin":
		return "/Library/Application Support/family-policy/time-limits-config.yaml"
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "family-policy", "time-limits-config.yaml")
	default:
		return "/etc/family-policy/time-limits-config.yaml"
	}
}

// LoadTimeLimitsConfig reads, parses, and validates the YAML config at path.
func LoadTimeLimitsConfig(path string) (*TimeLimitsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading time-limits config file %s: %w", path, err)
	}
	var cfg TimeLimitsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing time-limits config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid time-limits config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save serializes the config as YAML and writes it atomically.
func (c *TimeLimitsConfig) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing time-limits config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing temp config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

var validDayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Validate enforces spec.md §6's rules: non-empty children, unique ids,
// strictly descending warnings, custom-day names from {monday..sunday},
// and shared/individual os_users mutual exclusivity.
func (c *TimeLimitsConfig) Validate() error {
	if len(c.Children) == 0 {
		return fmt.Errorf("configuration must specify at least one child")
	}

	seen := make(map[string]bool, len(c.Children))
	for _, child := range c.Children {
		if child.ID == "" {
			return fmt.Errorf("child ID cannot be empty")
		}
		if child.Name == "" {
			return fmt.Errorf("child name cannot be empty")
		}
		if seen[child.ID] {
			return fmt.Errorf("duplicate child ID: %s", child.ID)
		}
		seen[child.ID] = true

		for i := 1; i < len(child.Warnings); i++ {
			if child.Warnings[i] >= child.Warnings[i-1] {
				return fmt.Errorf("child %q: warning thresholds must be in descending order, got: %v", child.Name, child.Warnings)
			}
		}

		for _, custom := range child.Limits.Custom {
			if len(custom.Days) == 0 {
				return fmt.Errorf("child %q: custom day limit must specify at least one day", child.Name)
			}
			for _, day := range custom.Days {
				if !validDayNames[lower(day)] {
					return fmt.Errorf("child %q: invalid day name: %s", child.Name, day)
				}
			}
		}
	}

	if c.SharedLogin.Enabled {
		for _, child := range c.Children {
			if len(child.OSUsers) != 0 {
				return fmt.Errorf("child %q has os_users configured, but shared_login mode is enabled; in shared login mode children must not have os_users", child.Name)
			}
		}
		if len(c.SharedLogin.SharedAccounts) == 0 {
			return fmt.Errorf("shared login mode is enabled but no shared_accounts are configured")
		}
	} else {
		for _, child := range c.Children {
			if len(child.OSUsers) == 0 {
				return fmt.Errorf("child %q has no os_users configured; in individual login mode each child must have at least one os_user", child.Name)
			}
		}
	}

	return nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
