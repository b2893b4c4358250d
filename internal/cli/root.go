// Package cli implements the revet command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revet",
	Short: "Mechanical checklist review for git diffs",
	Long: `revet applies a checklist of pattern rules to a git diff and renders
a severity-ordered report. It is a single-shot batch tool: collect the
diff, evaluate every applicable rule against the changed lines, print
the findings, and exit.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}
