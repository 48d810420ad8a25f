package cmd

import (
	"fmt"
	"os"

	"github.com/woodhall335/noticecheck/internal/claims"
	"github.com/woodhall335/noticecheck/internal/config"
	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/report"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `noticecheck init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newValidator builds the rule engine with the configured claim policy.
func newValidator(cfg *config.Config) *engine.Validator {
	policy := claims.NegativePolicy(cfg.NegativeBalancePolicy)
	return engine.New(policy)
}

// printResult renders a validation result for terminal output.
func printResult(name string, result report.Result) {
	fmt.Printf("%s: %s (%s, %s)\n", name, statusLabel(result.Status), result.ValidatorKey, result.Jurisdiction)

	for _, issue := range result.Blockers {
		fmt.Printf("  BLOCKER  %-34s %s\n", issue.Code, issue.Message)
	}
	for _, issue := range result.Warnings {
		fmt.Printf("  warning  %-34s %s\n", issue.Code, issue.Message)
	}
	for _, issue := range result.Suggestions {
		fmt.Printf("  suggest  %-34s %s\n", issue.Code, issue.Message)
	}
	if len(result.MissingFacts) > 0 {
		fmt.Printf("  missing information:\n")
		for _, key := range result.MissingFacts {
			fmt.Printf("    - %s\n", key)
		}
	}
	if result.ClaimBreakdown != nil {
		fmt.Printf("  claim total: %s (arrears %s, damages %s, other %s)\n",
			result.TotalClaimAmount,
			result.ClaimBreakdown.Arrears,
			result.ClaimBreakdown.Damages,
			result.ClaimBreakdown.OtherCharges,
		)
	}
	for _, d := range result.Deadlines {
		fmt.Printf("  %-34s %s\n", d.Label, datemath.FormatUKDate(d.Date))
	}
}

func statusLabel(s report.Status) string {
	switch s {
	case report.StatusPass:
		return "PASS"
	case report.StatusWarning:
		return "PASS WITH WARNINGS"
	case report.StatusInvalid:
		return "INVALID"
	case report.StatusNeedsInfo:
		return "NEEDS MORE INFORMATION"
	default:
		return "UNKNOWN"
	}
}

// ensureDataDir creates the configured data directory if missing.
func ensureDataDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}
	return nil
}
