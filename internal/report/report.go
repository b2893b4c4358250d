// Package report assembles findings into a severity-ordered report and
// renders it in several formats.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sprite-ai/revet/internal/diff"
	"github.com/sprite-ai/revet/internal/model"
)

// ErrRenderCounts is returned when a report's per-tier counts do not match
// its findings. It indicates an internal invariant violation and is fatal.
var ErrRenderCounts = errors.New("report counts do not match findings")

// Report groups findings by severity with summary counts. It is created
// once per invocation and has no identity beyond it.
type Report struct {
	Baseline     string
	FilesChanged int
	LinesAdded   int
	LinesDeleted int

	// Findings sorted by severity (critical first), then file path, then
	// line number.
	Findings []model.Finding

	// Counts holds the number of findings per tier; every tier has an
	// entry, zero included.
	Counts map[model.Severity]int
}

// Build creates a report from evaluation output. The change set supplies
// the header statistics and may be nil.
func Build(cs *diff.ChangeSet, findings []model.Finding) *Report {
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})

	counts := make(map[model.Severity]int, 4)
	for _, tier := range model.Tiers() {
		counts[tier] = 0
	}
	for _, f := range sorted {
		counts[f.Severity]++
	}

	rep := &Report{
		Findings: sorted,
		Counts:   counts,
	}
	if cs != nil {
		rep.Baseline = cs.Baseline
		rep.FilesChanged, rep.LinesAdded, rep.LinesDeleted = cs.Stats()
	}
	return rep
}

// Total returns the number of findings.
func (r *Report) Total() int {
	return len(r.Findings)
}

// MaxSeverity returns the highest tier present, or zero when there are no
// findings.
func (r *Report) MaxSeverity() model.Severity {
	var max model.Severity
	for _, f := range r.Findings {
		if f.Severity > max {
			max = f.Severity
		}
	}
	return max
}

// Tier returns the findings in one tier, preserving report order.
func (r *Report) Tier(sev model.Severity) []model.Finding {
	var out []model.Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Summary returns a one-line count summary, most severe first.
func (r *Report) Summary() string {
	if len(r.Findings) == 0 {
		return "No findings"
	}
	var parts []string
	for _, tier := range model.Tiers() {
		if c := r.Counts[tier]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, tier))
		}
	}
	return strings.Join(parts, ", ")
}

// Verify checks the counts invariant: per-tier counts must sum to the
// number of findings.
func (r *Report) Verify() error {
	sum := 0
	for _, tier := range model.Tiers() {
		sum += r.Counts[tier]
	}
	if sum != len(r.Findings) {
		return fmt.Errorf("%w: counts sum to %d, have %d findings", ErrRenderCounts, sum, len(r.Findings))
	}
	return nil
}

// Writer renders a report in one format.
type Writer interface {
	Write(w io.Writer, rep *Report) error
}

// NewWriter returns a writer for the given format.
func NewWriter(format string) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "html":
		return &HTMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// message returns the text rendered for a finding, degrading to a
// placeholder rather than dropping the finding.
func message(f model.Finding) string {
	if strings.TrimSpace(f.Message) == "" {
		return "(message unavailable)"
	}
	return f.Message
}

// errWriter wraps an io.Writer and keeps the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
