package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revet/internal/config"
	"github.com/sprite-ai/revet/internal/diff"
	"github.com/sprite-ai/revet/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered checklist rules",
	Long: `Print every rule in the registry snapshot, including custom rules
declared in configuration, with its severity and target file patterns.`,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	repoDir, _ := diff.RepoRoot(".")

	cfg, err := config.Load(repoDir)
	if err != nil {
		return err
	}

	reg, err := rules.NewRegistry(rules.Options{
		SeverityOverrides: cfg.SeverityOverrides,
		Custom:            customRules(cfg),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-10s %s\n", "ID", "SEVERITY", "FILES")
	for _, r := range reg.All() {
		files := "*"
		if len(r.Files) > 0 {
			files = strings.Join(r.Files, ", ")
		}
		fmt.Printf("%-24s %-10s %s\n", r.ID, r.Severity, files)
	}
	fmt.Printf("\n%d rules registered\n", reg.Len())

	return nil
}
