package cli

import (
	"fmt"
	"os"

	"github.com/emosenkis/family-policy/internal/config"
)

// RunConfigInit writes a starter agent config to outputPath (or the
// platform default if empty), refusing to overwrite an existing file
// unless force is set.
func RunConfigInit(outputPath string, force bool) error {
	if outputPath == "" {
		outputPath = config.AgentConfigPath()
	}
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", outputPath)
		}
	}

	cfg := &config.AgentConfig{
		GitHub: config.GitHubConfig{
			PolicyURL: "https://example.com/family-policy/policy.yaml",
		},
		Agent:   config.DefaultAgentSettings(),
		Logging: config.DefaultLoggingConfig(),
	}
	if err := cfg.Save(outputPath); err != nil {
		return fmt.Errorf("writing starter config: %w", err)
	}
	fmt.Printf("Wrote starter config to %s\n", outputPath)
	fmt.Println("Edit github.policy_url before running 'familypolicyd apply'.")
	return nil
}
