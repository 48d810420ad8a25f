package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/woodhall335/noticecheck/internal/casefile"
	"github.com/woodhall335/noticecheck/internal/config"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/progress"
	"github.com/woodhall335/noticecheck/internal/questions"
	"github.com/woodhall335/noticecheck/internal/report"
)

var (
	validateInteractive bool
	validateStrict      bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [case files or globs]",
	Short: "Validate notice and claim case files",
	Long: `Validates case files against the compliance rules for the stated
regime and jurisdiction. Without arguments the case globs from the config
file are used. With --interactive, missing facts are asked for on the
terminal until a definitive result is reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		paths, err := resolveCasePaths(args, cfg)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no case files matched; pass paths or set `cases` in the config")
		}

		validator := newValidator(cfg)

		if validateInteractive {
			if len(paths) != 1 {
				return fmt.Errorf("--interactive takes exactly one case file, got %d", len(paths))
			}
			return runInteractive(paths[0], validator)
		}

		return runBatch(paths, validator, cfg)
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&validateInteractive, "interactive", "i", false, "ask for missing facts on the terminal")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat warnings as failures")
	rootCmd.AddCommand(validateCmd)
}

// resolveCasePaths expands arguments (or the configured globs) into a
// sorted, de-duplicated list of case files.
func resolveCasePaths(args []string, cfg *config.Config) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Cases
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		// Plain paths pass through so a typo fails loudly instead of
		// matching nothing.
		if !strings.ContainsAny(pattern, "*?[{") {
			if !seen[pattern] {
				seen[pattern] = true
				paths = append(paths, pattern)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad case glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func runBatch(paths []string, validator *engine.Validator, cfg *config.Config) error {
	reporter := progress.NewReporter()
	reporter.Start(len(paths))

	var invalid, warned, incomplete int
	results := make([]report.Result, 0, len(paths))
	names := make([]string, 0, len(paths))

	for i, path := range paths {
		reporter.Update(i+1, path)

		cf, err := casefile.Load(path)
		if err != nil {
			reporter.Finish()
			return err
		}
		result := validateCase(cf, validator)
		results = append(results, result)
		names = append(names, caseName(cf, path))

		switch result.Status {
		case report.StatusInvalid:
			invalid++
		case report.StatusWarning:
			warned++
		case report.StatusNeedsInfo, report.StatusUnknown:
			incomplete++
		}
	}
	reporter.Finish()

	for i, result := range results {
		printResult(names[i], result)
		fmt.Println()
	}

	fmt.Printf("%d case(s): %d passed, %d with warnings, %d invalid, %d need more information\n",
		len(results), len(results)-invalid-warned-incomplete, warned, invalid, incomplete)

	if invalid > 0 {
		return fmt.Errorf("%d case(s) failed validation", invalid)
	}
	if warned > 0 && (validateStrict || cfg.CI.FailOnWarning) {
		return fmt.Errorf("%d case(s) passed with warnings", warned)
	}
	return nil
}

func validateCase(cf *casefile.File, validator *engine.Validator) report.Result {
	fs := storeFromCase(cf)
	return validator.Validate(fs.Snapshot(), cf.ValidatorKey, cf.Jurisdiction)
}

func storeFromCase(cf *casefile.File) *facts.Store {
	fs := facts.NewStore()
	for _, f := range cf.Facts {
		// Case files hold one row per key, so a write never downgrades.
		fs.Set(f.Key, f.Value, f.Provenance)
	}
	return fs
}

func caseName(cf *casefile.File, path string) string {
	if cf.Reference != "" {
		return cf.Reference
	}
	return path
}

// runInteractive walks the question flow for one case, prompting for
// each missing fact until the result no longer depends on unknowns.
func runInteractive(path string, validator *engine.Validator) error {
	cf, err := casefile.Load(path)
	if err != nil {
		return err
	}

	fs := storeFromCase(cf)
	flow := questions.NewFlow(fs, validator, cf.ValidatorKey, cf.Jurisdiction)

	for !flow.Done() {
		q, ok := flow.Current()
		if !ok {
			break
		}
		value, err := askQuestion(q)
		if err != nil {
			return err
		}
		if err := flow.SubmitAnswer(q.Key, value); err != nil {
			return err
		}
	}

	result, err := flow.Complete()
	if err != nil {
		return err
	}
	fmt.Println()
	printResult(caseName(cf, path), result)

	if result.Status == report.StatusInvalid {
		return fmt.Errorf("case failed validation")
	}
	return nil
}

// askQuestion prompts for one answer, re-prompting until the input
// parses for the question's fact key.
func askQuestion(q questions.Question) (facts.Value, error) {
	switch q.Kind {
	case questions.InputYesNo:
		sel := promptui.Select{Label: q.Prompt, Items: []string{"yes", "no"}}
		_, answer, err := sel.Run()
		if err != nil {
			return facts.Value{}, fmt.Errorf("prompt: %w", err)
		}
		return questions.ParseAnswer(q.Key, answer)

	case questions.InputSingleSelect:
		if len(q.Options) > 0 {
			sel := promptui.Select{Label: q.Prompt, Items: q.Options}
			_, answer, err := sel.Run()
			if err != nil {
				return facts.Value{}, fmt.Errorf("prompt: %w", err)
			}
			return questions.ParseAnswer(q.Key, answer)
		}
		fallthrough

	default:
		prompt := promptui.Prompt{
			Label: q.Prompt,
			Validate: func(input string) error {
				_, err := questions.ParseAnswer(q.Key, input)
				return err
			},
		}
		answer, err := prompt.Run()
		if err != nil {
			return facts.Value{}, fmt.Errorf("prompt: %w", err)
		}
		return questions.ParseAnswer(q.Key, answer)
	}
}
