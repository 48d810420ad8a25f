package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woodhall335/noticecheck/internal/rules"
)

var (
	rulesValidator    string
	rulesJurisdiction string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the statutory rule catalogue",
	Long:  `Prints every registered compliance rule, optionally filtered by validator or jurisdiction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := rules.Default()

		if rulesValidator != "" && !reg.KnownValidator(rules.ValidatorKey(rulesValidator)) {
			return fmt.Errorf("unknown validator %q", rulesValidator)
		}
		if rulesJurisdiction != "" && !reg.KnownJurisdiction(rules.Jurisdiction(rulesJurisdiction)) {
			return fmt.Errorf("unknown jurisdiction %q", rulesJurisdiction)
		}

		count := 0
		for _, rule := range reg.All() {
			if rulesValidator != "" && !ruleHasValidator(rule, rules.ValidatorKey(rulesValidator)) {
				continue
			}
			if rulesJurisdiction != "" && !ruleHasJurisdiction(rule, rules.Jurisdiction(rulesJurisdiction)) {
				continue
			}
			count++
			fmt.Printf("%-36s %-10s %s\n", rule.ID, rule.Severity, rule.Section)
			if len(rule.Requires) > 0 {
				keys := make([]string, len(rule.Requires))
				for i, k := range rule.Requires {
					keys[i] = string(k)
				}
				fmt.Printf("%-36s requires: %s\n", "", strings.Join(keys, ", "))
			}
		}
		fmt.Printf("\n%d rule(s)\n", count)
		return nil
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesValidator, "validator", "", "filter by validator key (section_8, section_21, money_claim)")
	rulesCmd.Flags().StringVar(&rulesJurisdiction, "jurisdiction", "", "filter by jurisdiction (england, wales)")
	rootCmd.AddCommand(rulesCmd)
}

func ruleHasValidator(r rules.Rule, vk rules.ValidatorKey) bool {
	for _, v := range r.ValidatorKeys {
		if v == vk {
			return true
		}
	}
	return false
}

func ruleHasJurisdiction(r rules.Rule, j rules.Jurisdiction) bool {
	for _, v := range r.Jurisdictions {
		if v == j {
			return true
		}
	}
	return false
}
