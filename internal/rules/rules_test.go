package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/revet/internal/model"
)

func TestNewRegistryDefaults(t *testing.T) {
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)
	require.Greater(t, reg.Len(), 0)

	ids := make(map[string]bool)
	for _, r := range reg.All() {
		require.False(t, ids[r.ID], "duplicate rule id %s", r.ID)
		ids[r.ID] = true
		require.NotNil(t, r.Pattern, "builtin rule %s must carry a pattern", r.ID)
	}

	assert.True(t, ids["secret-literal"])
	assert.True(t, ids["todo-marker"])
}

func TestForFileOrdering(t *testing.T) {
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	rs := reg.ForFile("internal/server/auth.go")
	require.NotEmpty(t, rs)

	// Base set first, file-specific rules appended.
	sawSpecific := false
	for _, r := range rs {
		if len(r.Files) > 0 {
			sawSpecific = true
		} else {
			assert.False(t, sawSpecific, "base rule %s appeared after a file-specific rule", r.ID)
		}
	}
	assert.True(t, sawSpecific, "expected go-specific rules for a .go file")
}

func TestForFileDeterministic(t *testing.T) {
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	first := reg.ForFile("pkg/handler.py")
	second := reg.ForFile("pkg/handler.py")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestForFileManifest(t *testing.T) {
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	var hasGoDep, hasNpmDep bool
	for _, r := range reg.ForFile("go.mod") {
		switch r.ID {
		case "new-go-dependency":
			hasGoDep = true
		case "new-npm-dependency":
			hasNpmDep = true
		}
	}
	assert.True(t, hasGoDep)
	assert.False(t, hasNpmDep, "npm rule must not apply to go.mod")
}

func TestSkip(t *testing.T) {
	reg, err := NewRegistry(Options{Skip: []string{"todo-marker"}})
	require.NoError(t, err)

	for _, r := range reg.All() {
		assert.NotEqual(t, "todo-marker", r.ID)
	}
}

func TestSeverityOverrides(t *testing.T) {
	reg, err := NewRegistry(Options{
		SeverityOverrides: map[string]string{"todo-marker": "high"},
	})
	require.NoError(t, err)

	for _, r := range reg.All() {
		if r.ID == "todo-marker" {
			assert.Equal(t, model.SeverityHigh, r.Severity)
			return
		}
	}
	t.Fatal("todo-marker not found")
}

func TestSeverityOverrideInvalidTier(t *testing.T) {
	_, err := NewRegistry(Options{
		SeverityOverrides: map[string]string{"todo-marker": "blocker"},
	})
	assert.Error(t, err)
}

func TestCustomRule(t *testing.T) {
	reg, err := NewRegistry(Options{
		Custom: []CustomRule{{
			ID:       "no-deprecated-api",
			Pattern:  `LegacyClient\(`,
			Message:  "Deprecated API: %s",
			Severity: "high",
			Files:    []string{"*.go"},
		}},
	})
	require.NoError(t, err)

	rs := reg.ForFile("client.go")
	var found *Rule
	for i := range rs {
		if rs[i].ID == "no-deprecated-api" {
			found = &rs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, model.SeverityHigh, found.Severity)
	assert.True(t, found.Match("c := LegacyClient(cfg)"))
	assert.Equal(t, "Deprecated API: c := LegacyClient(cfg)", found.Render("  c := LegacyClient(cfg)\n"))
}

func TestCustomRuleInvalidPattern(t *testing.T) {
	_, err := NewRegistry(Options{
		Custom: []CustomRule{{ID: "bad", Pattern: `([`, Severity: "low"}},
	})
	assert.Error(t, err)
}

func TestCustomRuleDuplicateID(t *testing.T) {
	_, err := NewRegistry(Options{
		Custom: []CustomRule{{ID: "todo-marker", Pattern: `x`, Severity: "low"}},
	})
	assert.Error(t, err)
}

func TestAppliesTo(t *testing.T) {
	base := Rule{ID: "base"}
	assert.True(t, base.AppliesTo("anything/at/all.txt"))

	goRule := Rule{ID: "go", Files: []string{"*.go"}}
	assert.True(t, goRule.AppliesTo("internal/diff/diff.go"))
	assert.False(t, goRule.AppliesTo("setup.py"))

	manifest := Rule{ID: "dep", Files: []string{"go.mod"}}
	assert.True(t, manifest.AppliesTo("go.mod"))
	assert.True(t, manifest.AppliesTo("services/api/go.mod"))
	assert.False(t, manifest.AppliesTo("go.sum"))
}

func TestBuiltinPatterns(t *testing.T) {
	cases := []struct {
		rule  string
		text  string
		match bool
	}{
		{"secret-literal", `password = "hunter2secret"`, true},
		{"secret-literal", `api_key: 'sk-abcdef123456'`, true},
		{"secret-literal", `password = os.Getenv("PASSWORD")`, false},
		{"merge-conflict-marker", "<<<<<<< HEAD", true},
		{"merge-conflict-marker", "x := a << 7", false},
		{"todo-marker", "// TODO: remove before release", true},
		{"sql-statement", `db.Exec("DELETE FROM users WHERE id = ?")`, true},
		{"debug-leftover", "console.log(payload)", true},
		{"commented-code", "# def old_handler():", true},
		{"commented-code", "# explains the approach", false},
	}

	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	byID := make(map[string]Rule)
	for _, r := range reg.All() {
		byID[r.ID] = r
	}

	for _, tc := range cases {
		r, ok := byID[tc.rule]
		require.True(t, ok, "rule %s missing", tc.rule)
		assert.Equal(t, tc.match, r.Match(tc.text), "%s against %q", tc.rule, tc.text)
	}
}
