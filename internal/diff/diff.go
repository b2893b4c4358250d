// Package diff collects git diffs and parses them into a structured ChangeSet.
package diff

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/revet/internal/model"
)

var (
	// ErrBaselineNotFound means the comparison baseline does not resolve
	// to a git ref. Fatal: nothing can be evaluated.
	ErrBaselineNotFound = errors.New("baseline not found")

	// ErrEmptyChangeSet means the baseline resolved but the diff contains
	// no changes. Recoverable: the caller should suggest a wider baseline.
	ErrEmptyChangeSet = errors.New("no changes in diff")
)

// File represents a single changed file with its parsed hunks.
type File struct {
	OldName      string
	NewName      string
	Kind         model.ChangeKind
	IsBinary     bool
	Hunks        []*gitdiff.TextFragment
	AddedLines   int
	DeletedLines int
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.Kind == model.ChangeRenamed {
		return fmt.Sprintf("%s → %s", f.OldName, f.NewName)
	}
	if f.Kind == model.ChangeDeleted {
		return f.OldName
	}
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// Path returns the path used for rule selection and report ordering: the
// new path where one exists, otherwise the old one.
func (f *File) Path() string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// ChangeSet holds the parsed diff for all files, in diff order.
type ChangeSet struct {
	Baseline string
	Files    []*File
	Raw      string // the raw unified diff text
}

// Stats returns aggregate statistics.
func (cs *ChangeSet) Stats() (files, added, deleted int) {
	files = len(cs.Files)
	for _, f := range cs.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Filter removes files whose path matches any of the given glob patterns.
// Patterns are matched against the full path and against the basename.
func (cs *ChangeSet) Filter(exclude []string) {
	if len(exclude) == 0 {
		return
	}
	kept := cs.Files[:0]
	for _, f := range cs.Files {
		if !matchesAny(f.Path(), exclude) {
			kept = append(kept, f)
		}
	}
	cs.Files = kept
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}

// Parse reads a unified diff string and returns a ChangeSet.
func Parse(raw string) (*ChangeSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	cs := &ChangeSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldName:  f.OldName,
			NewName:  f.NewName,
			IsBinary: f.IsBinary,
		}

		switch {
		case f.IsNew:
			df.Kind = model.ChangeAdded
		case f.IsDelete:
			df.Kind = model.ChangeDeleted
		case f.IsRename:
			df.Kind = model.ChangeRenamed
		default:
			df.Kind = model.ChangeModified
		}

		for _, frag := range f.TextFragments {
			df.Hunks = append(df.Hunks, frag)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					df.AddedLines++
				case gitdiff.OpDelete:
					df.DeletedLines++
				}
			}
		}

		cs.Files = append(cs.Files, df)
	}

	return cs, nil
}

// Collect resolves the baseline in repoDir, runs git diff, and returns the
// parsed ChangeSet. An empty baseline compares the working tree to HEAD.
func Collect(repoDir, baseline string, contextLines int) (*ChangeSet, error) {
	for _, ref := range baselineRefs(baseline) {
		if err := verifyRef(repoDir, ref); err != nil {
			return nil, fmt.Errorf("%w: %q does not resolve", ErrBaselineNotFound, ref)
		}
	}

	args := []string{fmt.Sprintf("-U%d", contextLines)}
	if baseline == "" {
		args = append(args, "HEAD")
	} else {
		args = append(args, baseline)
	}

	raw, err := gitDiff(repoDir, args...)
	if err != nil {
		return nil, err
	}

	return changeSetFrom(raw, baseline)
}

// changeSetFrom parses raw diff text and enforces the non-empty contract.
func changeSetFrom(raw, baseline string) (*ChangeSet, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyChangeSet
	}
	cs, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(cs.Files) == 0 {
		return nil, ErrEmptyChangeSet
	}
	cs.Baseline = baseline
	return cs, nil
}

// FromReader builds a ChangeSet from an already-produced unified diff, e.g.
// one piped in on stdin.
func FromReader(raw string) (*ChangeSet, error) {
	return changeSetFrom(raw, "stdin")
}

// baselineRefs extracts the refs that must resolve for a baseline to be
// usable. An empty baseline needs HEAD; a range needs both endpoints.
func baselineRefs(baseline string) []string {
	if baseline == "" {
		return []string{"HEAD"}
	}
	normalized := strings.Replace(baseline, "...", "..", 1)
	var refs []string
	for _, part := range strings.Split(normalized, "..") {
		if part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}

func verifyRef(repoDir, ref string) error {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	cmd.Dir = repoDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return nil
}

func gitDiff(repoDir string, args ...string) (string, error) {
	cmdArgs := append([]string{"diff"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	cmd.Dir = repoDir
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}

	return string(out), nil
}

// RepoRoot returns the git repository root containing dir.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (or git not installed): %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
