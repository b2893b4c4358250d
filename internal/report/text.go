package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/revet/internal/model"
)

// Dracula-ish palette, matching the HTML report.
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
	cleanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))

	tierStyles = map[model.Severity]lipgloss.Style{
		model.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
		model.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb86c")).Bold(true),
		model.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c")),
		model.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")),
	}
)

// TextWriter renders a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, rep *Report) error {
	if err := rep.Verify(); err != nil {
		return err
	}

	ew := &errWriter{w: w}

	header := fmt.Sprintf("%d file(s) changed, +%d -%d", rep.FilesChanged, rep.LinesAdded, rep.LinesDeleted)
	if rep.Baseline != "" {
		header += dimStyle.Render(fmt.Sprintf("  (baseline %s)", rep.Baseline))
	}
	ew.println(headerStyle.Render(header))
	ew.printf("Findings: %s\n\n", rep.Summary())

	if rep.Total() == 0 {
		ew.println(cleanStyle.Render("No findings."))
		return ew.err
	}

	for _, tier := range model.Tiers() {
		findings := rep.Tier(tier)
		if len(findings) == 0 {
			continue
		}

		label := strings.ToUpper(tier.String())
		ew.printf("%s\n%s\n", tierStyles[tier].Render(label), dimStyle.Render(strings.Repeat("─", 40)))

		for _, f := range findings {
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			tag := f.RuleID
			if f.Kind == model.KindToolingError {
				tag = f.RuleID + " " + dimStyle.Render("(tooling-error)")
			}
			ew.printf("  %-40s [%s] %s\n", loc, tag, message(f))
		}
		ew.println("")
	}

	return ew.err
}
