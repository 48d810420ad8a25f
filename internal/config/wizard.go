package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .noticecheck.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to noticecheck! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Default jurisdiction.
	jurisdictionPrompt := promptui.Select{
		Label: "Default jurisdiction for new cases",
		Items: []string{"england", "wales"},
	}
	_, jurisdiction, err := jurisdictionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("jurisdiction selection: %w", err)
	}
	cfg.DefaultJurisdiction = jurisdiction

	// 2. Negative balance handling.
	policyPrompt := promptui.Select{
		Label: "How should overpaid claim lines be treated",
		Items: []string{
			"offset (overpayments reduce the claim total)",
			"floor (each line counts no lower than zero)",
		},
	}
	policyIdx, _, err := policyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("policy selection: %w", err)
	}
	policies := []string{"offset", "floor"}
	cfg.NegativeBalancePolicy = policies[policyIdx]

	// 3. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory for the case database",
		Default: cfg.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Port for the HTTP API",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 5. Case file patterns.
	casesPrompt := promptui.Prompt{
		Label:   "Case file patterns (comma-separated globs)",
		Default: strings.Join(cfg.Cases, ", "),
	}
	casesStr, err := casesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("case patterns: %w", err)
	}
	if patterns := splitAndTrim(casesStr); len(patterns) > 0 {
		cfg.Cases = patterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Save to .noticecheck.yml.
	configPath := ".noticecheck.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
