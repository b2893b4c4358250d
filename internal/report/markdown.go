package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sprite-ai/revet/internal/model"
)

// MarkdownWriter renders a report suitable for PR comments and docs.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, rep *Report) error {
	if err := rep.Verify(); err != nil {
		return err
	}

	ew := &errWriter{w: w}

	ew.println("## Review Report")
	ew.println("")
	ew.printf("**%d file(s)** changed, **+%d** insertions, **-%d** deletions",
		rep.FilesChanged, rep.LinesAdded, rep.LinesDeleted)
	if rep.Baseline != "" {
		ew.printf(" (baseline `%s`)", rep.Baseline)
	}
	ew.println("")
	ew.println("")
	ew.printf("**Findings:** %s\n\n", rep.Summary())

	if rep.Total() == 0 {
		ew.println("No findings.")
		return ew.err
	}

	for _, tier := range model.Tiers() {
		findings := rep.Tier(tier)
		if len(findings) == 0 {
			continue
		}

		ew.printf("### %s (%d)\n\n", titleCase(tier.String()), len(findings))
		ew.println("| Location | Rule | Message |")
		ew.println("|----------|------|---------|")
		for _, f := range findings {
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			msg := strings.ReplaceAll(message(f), "|", "\\|")
			ew.printf("| `%s` | %s | %s |\n", loc, f.RuleID, msg)
		}
		ew.println("")
	}

	return ew.err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
