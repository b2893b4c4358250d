// Package model defines the core data types shared across revet.
package model

import (
	"fmt"
	"strings"
)

// Severity is one of the four fixed tiers used to order and gate findings.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Tiers returns all severities from most to least severe, the order reports use.
func Tiers() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// ParseSeverity parses a tier name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("invalid severity: %q", s)
	}
}

// ChangeKind categorizes how a file changed.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeAdded
	ChangeDeleted
	ChangeRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	default:
		return "modified"
	}
}

// FindingKind separates real rule matches from evaluator diagnostics.
type FindingKind int

const (
	// KindIssue is a regular rule match.
	KindIssue FindingKind = iota
	// KindToolingError marks a diagnostic emitted when a rule faulted
	// during evaluation instead of producing a match.
	KindToolingError
)

func (k FindingKind) String() string {
	if k == KindToolingError {
		return "tooling-error"
	}
	return "issue"
}

// Finding is one reported issue produced by matching one rule against one
// location in the change set.
type Finding struct {
	RuleID   string
	Kind     FindingKind
	File     string
	Line     int // line number in the new file, 0 if file-level
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("[%s] %s: %s", f.RuleID, loc, f.Message)
}
