package report

import (
	"encoding/json"
	"io"

	"github.com/sprite-ai/revet/internal/model"
)

// JSONWriter renders a machine-readable report.
type JSONWriter struct{}

type jsonFinding struct {
	Rule     string `json:"rule"`
	Kind     string `json:"kind"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type jsonReport struct {
	Baseline     string         `json:"baseline,omitempty"`
	FilesChanged int            `json:"files_changed"`
	LinesAdded   int            `json:"lines_added"`
	LinesDeleted int            `json:"lines_deleted"`
	Summary      string         `json:"summary"`
	MaxSeverity  string         `json:"max_severity,omitempty"`
	Counts       map[string]int `json:"counts"`
	Total        int            `json:"total"`
	Findings     []jsonFinding  `json:"findings"`
}

func (j *JSONWriter) Write(w io.Writer, rep *Report) error {
	if err := rep.Verify(); err != nil {
		return err
	}

	out := jsonReport{
		Baseline:     rep.Baseline,
		FilesChanged: rep.FilesChanged,
		LinesAdded:   rep.LinesAdded,
		LinesDeleted: rep.LinesDeleted,
		Summary:      rep.Summary(),
		Counts:       make(map[string]int, 4),
		Total:        rep.Total(),
		Findings:     make([]jsonFinding, 0, rep.Total()),
	}

	if max := rep.MaxSeverity(); max != 0 {
		out.MaxSeverity = max.String()
	}
	for _, tier := range model.Tiers() {
		out.Counts[tier.String()] = rep.Counts[tier]
	}
	for _, f := range rep.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			Rule:     f.RuleID,
			Kind:     f.Kind.String(),
			File:     f.File,
			Line:     f.Line,
			Severity: f.Severity.String(),
			Message:  message(f),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
