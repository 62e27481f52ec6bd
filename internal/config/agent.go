package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// AgentConfig is the on-disk TOML configuration read by the daemon at
// startup. It carries the remote-source settings, polling cadence,
// logging/security toggles, and an optional pointer at the time-limits
// config, matching spec.md §6.
type AgentConfig struct {
	GitHub      GitHubConfig      `toml:"github"`
	Agent       AgentSettings     `toml:"agent"`
	Logging     LoggingConfig     `toml:"logging"`
	Security    SecurityConfig    `toml:"security"`
	TimeLimits  TimeLimitsSection `toml:"time_limits"`
	AdminAlert  AdminAlertConfig  `toml:"admin_alert"`
}

// AdminAlertConfig controls Mailgun-backed email alerts sent to a parent's
// own address for every time-limit warning and final warning; the lock
// action itself sends no email. Disabled by default; the
// tracker's desktop notifications (internal/platform.Notifier) cover the
// child-facing warnings regardless of this setting.
type AdminAlertConfig struct {
	Enabled         bool   `toml:"enabled"`
	MailgunDomain   string `toml:"mailgun_domain,omitempty"`
	MailgunAPIKey   string `toml:"mailgun_api_key,omitempty"`
	FromEmail       string `toml:"from_email,omitempty"`
	AdminEmail      string `toml:"admin_email,omitempty"`
	CooldownMinutes uint32 `toml:"cooldown_minutes,omitempty"`
}

// DefaultAdminAlertCooldownMinutes matches the teacher's email cooldown.
const DefaultAdminAlertCooldownMinutes = 15

// GitHubConfig names the remote source client's target and optional bearer
// token (the name mirrors the original tool's GitHub-raw-URL convention,
// but any HTTPS host is accepted).
type GitHubConfig struct {
	PolicyURL   string `toml:"policy_url"`
	AccessToken string `toml:"access_token,omitempty"`
}

// AgentSettings controls the scheduler and retry policy.
type AgentSettings struct {
	PollInterval  uint64 `toml:"poll_interval"`
	PollJitter    uint64 `toml:"poll_jitter"`
	RetryInterval uint64 `toml:"retry_interval"`
	MaxRetries    uint32 `toml:"max_retries"`
}

// LoggingConfig selects the slog level. File is read from the config
// file, but no code uses it.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// SecurityConfig holds advanced, optional signature-verification settings.
// Reserved: no component in this implementation backs require_signature
// yet, matching the original tool's own unimplemented advanced option.
type SecurityConfig struct {
	RequireSignature bool   `toml:"require_signature"`
	TrustedKey       string `toml:"trusted_key,omitempty"`
}

// TimeLimitsSection toggles the tracker and optionally overrides where its
// config file lives.
type TimeLimitsSection struct {
	Enabled    bool   `toml:"enabled"`
	ConfigPath string `toml:"config_path,omitempty"`
}

// DefaultAgentSettings returns the spec-mandated defaults: 300s poll
// interval, 60s jitter, 60s retry interval, 3 max retries.
func DefaultAgentSettings() AgentSettings {
	return AgentSettings{PollInterval: 300, PollJitter: 60, RetryInterval: 60, MaxRetries: 3}
}

// DefaultLoggingConfig returns the "info" level default.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{Level: "info"}
}

// LoadAgentConfig reads and validates the TOML agent configuration at path.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agent config file %s: %w", path, err)
	}

	cfg := AgentConfig{
		Agent:   DefaultAgentSettings(),
		Logging: DefaultLoggingConfig(),
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing agent config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate enforces spec.md §6: HTTPS-only policy_url, poll_interval ≥60s.
func (c *AgentConfig) Validate() error {
	u, err := url.Parse(c.GitHub.PolicyURL)
	if err != nil {
		return fmt.Errorf("invalid policy_url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("policy_url must use HTTPS (got scheme %q)", u.Scheme)
	}
	if c.Agent.PollInterval < 60 {
		return fmt.Errorf("poll_interval must be at least 60 seconds (got %d)", c.Agent.PollInterval)
	}
	return nil
}

// Save serializes the config as TOML and writes it atomically with 0600
// permissions, matching the teacher's config-writing convention.
func (c *AgentConfig) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("serializing agent config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("writing temp config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// AgentConfigPath returns the fixed, platform-specific agent config path.
func AgentConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Library/Application Support/family-policy/agent.conf"
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "family-policy", "agent.conf")
	default:
		return "/etc/family-policy/agent.conf"
	}
}
