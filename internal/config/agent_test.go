package config

import (
	"path/filepath"
	"testing"
)

func TestAgentConfigValidateRejectsHTTP(t *testing.T) {
	cfg := &AgentConfig{GitHub: GitHubConfig{PolicyURL: "http://example.com/policy.yaml"}, Agent: DefaultAgentSettings()}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for non-HTTPS policy_url")
	}
}

func TestAgentConfigValidateRejectsShortPollInterval(t *testing.T) {
	cfg := &AgentConfig{
		GitHub: GitHubConfig{PolicyURL: "https://example.com/policy.yaml"},
		Agent:  AgentSettings{PollInterval: 10},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for poll_interval below 60s")
	}
}

func TestAgentConfigSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.conf")
	want := &AgentConfig{
		GitHub:  GitHubConfig{PolicyURL: "https://example.com/policy.yaml", AccessToken: "tok"},
		Agent:   DefaultAgentSettings(),
		Logging: DefaultLoggingConfig(),
	}
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("LoadAgentConfig: %v", err)
	}
	if got.GitHub.PolicyURL != want.GitHub.PolicyURL {
		t.Errorf("PolicyURL = %q, want %q", got.GitHub.PolicyURL, want.GitHub.PolicyURL)
	}
	if got.Agent.PollInterval != want.Agent.PollInterval {
		t.Errorf("PollInterval = %d, want %d", got.Agent.PollInterval, want.Agent.PollInterval)
	}
}

func TestLoadAgentConfigMissingFile(t *testing.T) {
	if _, err := LoadAgentConfig(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Fatalf("expected error for a missing config file")
	}
}
