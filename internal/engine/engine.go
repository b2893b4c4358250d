// Package engine evaluates registry rules against a change set.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/revet/internal/diff"
	"github.com/sprite-ai/revet/internal/model"
	"github.com/sprite-ai/revet/internal/rules"
)

// Options control evaluation.
type Options struct {
	// Workers bounds how many files are evaluated concurrently.
	// Zero or negative means one worker per CPU.
	Workers int
}

// Evaluate applies every applicable rule to every hunk of every file in cs.
// Each (rule, line) evaluation is pure, so files are fanned out across a
// worker pool; results are sorted afterwards, so scheduling never affects
// output.
func Evaluate(ctx context.Context, cs *diff.ChangeSet, reg *rules.Registry, opts Options) []model.Finding {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(cs.Files) {
		workers = len(cs.Files)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([][]model.Finding, len(cs.Files))
	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				results[i] = evalFile(cs.Files[i], reg.ForFile(cs.Files[i].Path()))
			}
			done <- struct{}{}
		}()
	}

dispatch:
	for i := range cs.Files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}

	var findings []model.Finding
	for _, fs := range results {
		findings = append(findings, fs...)
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})

	return findings
}

// evalFile walks the file's hunks, tracking new-file line numbers, and
// applies each rule to each added line.
func evalFile(f *diff.File, rs []rules.Rule) []model.Finding {
	if f.IsBinary {
		return nil
	}

	var findings []model.Finding
	name := f.Path()

	for _, hunk := range f.Hunks {
		lineNum := int(hunk.NewPosition)
		for _, line := range hunk.Lines {
			if line.Op == gitdiff.OpAdd {
				for i := range rs {
					if fnd, ok := evalLine(&rs[i], name, lineNum, line.Line); ok {
						findings = append(findings, fnd)
					}
				}
			}
			if line.Op == gitdiff.OpAdd || line.Op == gitdiff.OpContext {
				lineNum++
			}
		}
	}

	return dedupe(findings)
}

// evalLine applies one rule to one added line. A panicking rule is recovered
// and converted into a tooling-error finding attributed to that rule, so one
// bad rule never suppresses the rest of the evaluation.
func evalLine(r *rules.Rule, file string, line int, text string) (fnd model.Finding, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			fnd = model.Finding{
				RuleID:   r.ID,
				Kind:     model.KindToolingError,
				File:     file,
				Line:     line,
				Severity: model.SeverityLow,
				Message:  fmt.Sprintf("rule %s faulted: %v", r.ID, rec),
			}
			ok = true
		}
	}()

	if !r.Match(text) {
		return model.Finding{}, false
	}

	return model.Finding{
		RuleID:   r.ID,
		File:     file,
		Line:     line,
		Severity: r.Severity,
		Message:  r.Render(text),
	}, true
}

// dedupe removes findings with the same rule, file, line, and message.
func dedupe(findings []model.Finding) []model.Finding {
	seen := make(map[string]bool, len(findings))
	result := findings[:0]
	for _, f := range findings {
		key := fmt.Sprintf("%s:%s:%d:%s", f.RuleID, f.File, f.Line, f.Message)
		if !seen[key] {
			seen[key] = true
			result = append(result, f)
		}
	}
	return result
}
