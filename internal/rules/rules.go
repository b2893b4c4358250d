// Package rules defines checklist rules and the registry that selects the
// rules applicable to a changed file.
package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sprite-ai/revet/internal/model"
)

// Rule is one immutable checklist entry: a file predicate, a detection
// predicate over added-line text, the severity its findings carry, and a
// message template.
type Rule struct {
	ID       string
	Severity model.Severity

	// Files limits the rule to paths whose basename matches one of these
	// glob patterns ("*.go", "go.mod"). Empty means every file: the rule
	// belongs to the base set.
	Files []string

	// Pattern is the detection predicate applied to each added line.
	Pattern *regexp.Regexp

	// Check, when set, replaces Pattern as the detection predicate.
	// Builtin and config rules use Pattern; Check exists for programmatic
	// rule sets.
	Check func(text string) bool

	// Message is the finding message. A single %s slot receives the
	// matched line, trimmed.
	Message string
}

// AppliesTo reports whether the rule targets path.
func (r Rule) AppliesTo(path string) bool {
	if len(r.Files) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range r.Files {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// Match applies the detection predicate to one line of added text.
func (r Rule) Match(text string) bool {
	if r.Check != nil {
		return r.Check(text)
	}
	return r.Pattern.MatchString(text)
}

// Render produces the finding message for a matched line.
func (r Rule) Render(text string) string {
	if strings.Contains(r.Message, "%s") {
		return fmt.Sprintf(r.Message, strings.TrimSpace(text))
	}
	return r.Message
}

// CustomRule is a rule declared in configuration, compiled into a Rule by
// NewRegistry.
type CustomRule struct {
	ID       string
	Pattern  string
	Message  string
	Severity string
	Files    []string
}

// Options control which rules a registry snapshot contains.
type Options struct {
	// Skip lists rule IDs to leave out of the snapshot.
	Skip []string

	// SeverityOverrides remaps a rule ID to a different tier. Applied once
	// at build time; findings never re-classify.
	SeverityOverrides map[string]string

	// Custom appends config-declared rules after the builtin sets.
	Custom []CustomRule
}

// Registry is an immutable snapshot of loaded rules. Lookup is pure: the
// same path always yields the same rule set for a given snapshot.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a snapshot from the builtin sets plus custom rules.
func NewRegistry(opts Options) (*Registry, error) {
	skip := make(map[string]bool, len(opts.Skip))
	for _, id := range opts.Skip {
		skip[id] = true
	}

	var rs []Rule
	seen := make(map[string]bool)

	add := func(r Rule) error {
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if skip[r.ID] {
			return nil
		}
		if tier, ok := opts.SeverityOverrides[r.ID]; ok {
			sev, err := model.ParseSeverity(tier)
			if err != nil {
				return fmt.Errorf("severity override for %s: %w", r.ID, err)
			}
			r.Severity = sev
		}
		rs = append(rs, r)
		return nil
	}

	for _, r := range builtinRules() {
		if err := add(r); err != nil {
			return nil, err
		}
	}

	for _, c := range opts.Custom {
		r, err := compileCustom(c)
		if err != nil {
			return nil, err
		}
		if err := add(r); err != nil {
			return nil, err
		}
	}

	return &Registry{rules: rs}, nil
}

// FromRules builds a snapshot from an explicit rule list, bypassing the
// builtin sets.
func FromRules(rs []Rule) *Registry {
	cp := make([]Rule, len(rs))
	copy(cp, rs)
	return &Registry{rules: cp}
}

func compileCustom(c CustomRule) (Rule, error) {
	if c.ID == "" {
		return Rule{}, fmt.Errorf("custom rule missing id")
	}
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("custom rule %s: invalid pattern: %w", c.ID, err)
	}
	sev, err := model.ParseSeverity(c.Severity)
	if err != nil {
		return Rule{}, fmt.Errorf("custom rule %s: %w", c.ID, err)
	}
	msg := c.Message
	if msg == "" {
		msg = "Matched " + c.ID + ": %s"
	}
	return Rule{
		ID:       c.ID,
		Severity: sev,
		Files:    c.Files,
		Pattern:  re,
		Message:  msg,
	}, nil
}

// ForFile returns the rules applicable to path: the base set first, then
// file-specific rules, in registration order.
func (reg *Registry) ForFile(path string) []Rule {
	var base, specific []Rule
	for _, r := range reg.rules {
		if len(r.Files) == 0 {
			base = append(base, r)
		} else if r.AppliesTo(path) {
			specific = append(specific, r)
		}
	}
	return append(base, specific...)
}

// All returns every rule in registration order.
func (reg *Registry) All() []Rule {
	cp := make([]Rule, len(reg.rules))
	copy(cp, reg.rules)
	return cp
}

// Len returns the number of rules in the snapshot.
func (reg *Registry) Len() int {
	return len(reg.rules)
}
