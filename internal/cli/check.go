package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revet/internal/config"
	"github.com/sprite-ai/revet/internal/diff"
	"github.com/sprite-ai/revet/internal/engine"
	"github.com/sprite-ai/revet/internal/model"
	"github.com/sprite-ai/revet/internal/report"
	"github.com/sprite-ai/revet/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check [baseline]",
	Short: "Evaluate checklist rules against a diff and print a report",
	Long: `Collect a diff, evaluate every applicable rule, and print a
severity-ordered report.

The baseline selects what to compare:
  revet check                  # working tree vs HEAD
  revet check main             # working tree vs main
  revet check main...HEAD      # branch vs main
  git diff | revet check -     # pipe any unified diff

Exit codes:
  0 — clean, or findings below the fail-on threshold
  1 — fatal error (baseline not found, parse or render failure)
  2 — findings at or above the fail-on threshold`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "", "output format: text, json, markdown, html")
	checkCmd.Flags().IntP("context", "C", 0, "lines of context around changes")
	checkCmd.Flags().StringSlice("skip", nil, "rule IDs to skip")
	checkCmd.Flags().String("fail-on", "", "minimum tier that fails the run: low, medium, high, critical")
	checkCmd.Flags().Int("workers", 0, "max files evaluated concurrently")
	checkCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoDir, repoErr := diff.RepoRoot(".")

	cfg, err := config.Load(repoDir)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	failOn, err := model.ParseSeverity(cfg.FailOn)
	if err != nil {
		return fmt.Errorf("fail-on: %w", err)
	}

	cs, err := collect(args, repoDir, repoErr, cfg.ContextLines)
	if errors.Is(err, diff.ErrEmptyChangeSet) {
		fmt.Fprintln(os.Stderr, "No changes found.")
		fmt.Fprintln(os.Stderr, "Try a wider baseline, e.g. `revet check HEAD~1` or `revet check main...HEAD`.")
		return nil
	}
	if err != nil {
		return err
	}
	cs.Filter(cfg.Exclude)

	reg, err := rules.NewRegistry(rules.Options{
		Skip:              cfg.Skip,
		SeverityOverrides: cfg.SeverityOverrides,
		Custom:            customRules(cfg),
	})
	if err != nil {
		return err
	}

	findings := engine.Evaluate(cmd.Context(), cs, reg, engine.Options{Workers: cfg.Workers})
	rep := report.Build(cs, findings)

	writer, err := report.NewWriter(cfg.Format)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}

	if err := writer.Write(out, rep); err != nil {
		closeOut()
		return err
	}
	closeOut()

	if max := rep.MaxSeverity(); max >= failOn {
		os.Exit(2)
	}
	return nil
}

func collect(args []string, repoDir string, repoErr error, contextLines int) (*diff.ChangeSet, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return diff.FromReader(string(data))
	}

	if repoErr != nil {
		return nil, repoErr
	}

	baseline := ""
	if len(args) == 1 {
		baseline = args[0]
	}
	return diff.Collect(repoDir, baseline, contextLines)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		cfg.Format = v
	}
	if v, _ := cmd.Flags().GetInt("context"); v > 0 {
		cfg.ContextLines = v
	}
	if v, _ := cmd.Flags().GetStringSlice("skip"); len(v) > 0 {
		cfg.Skip = append(cfg.Skip, v...)
	}
	if v, _ := cmd.Flags().GetString("fail-on"); v != "" {
		cfg.FailOn = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
}

func customRules(cfg config.Config) []rules.CustomRule {
	out := make([]rules.CustomRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		out = append(out, rules.CustomRule{
			ID:       r.ID,
			Pattern:  r.Pattern,
			Message:  r.Message,
			Severity: r.Severity,
			Files:    r.Files,
		})
	}
	return out
}

func openOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
