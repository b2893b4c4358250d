package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/revet/internal/model"
)

func sampleFindings() []model.Finding {
	return []model.Finding{
		{RuleID: "todo-marker", File: "b.go", Line: 3, Severity: model.SeverityLow, Message: "Unresolved marker: TODO"},
		{RuleID: "secret-literal", File: "z/auth.go", Line: 5, Severity: model.SeverityCritical, Message: `Hardcoded secret: password = "x1234"`},
		{RuleID: "merge-conflict-marker", File: "a.go", Line: 1, Severity: model.SeverityHigh, Message: "Merge conflict marker left in place"},
		{RuleID: "sql-statement", File: "a.go", Line: 9, Severity: model.SeverityHigh, Message: "Raw SQL statement in change: DELETE FROM users"},
		{RuleID: "debug-leftover", File: "c.js", Line: 2, Severity: model.SeverityMedium, Message: "Debug output left in change: console.log(x)"},
	}
}

func TestBuildCountsInvariant(t *testing.T) {
	rep := Build(nil, sampleFindings())

	sum := 0
	for _, tier := range model.Tiers() {
		c, ok := rep.Counts[tier]
		require.True(t, ok, "tier %s missing from counts", tier)
		sum += c
	}
	assert.Equal(t, rep.Total(), sum)
	assert.NoError(t, rep.Verify())
}

func TestBuildOrdering(t *testing.T) {
	rep := Build(nil, sampleFindings())

	require.Len(t, rep.Findings, 5)
	assert.Equal(t, "secret-literal", rep.Findings[0].RuleID)

	// Within a tier: file path, then line.
	assert.Equal(t, model.SeverityHigh, rep.Findings[1].Severity)
	assert.Equal(t, "a.go", rep.Findings[1].File)
	assert.Equal(t, 1, rep.Findings[1].Line)
	assert.Equal(t, 9, rep.Findings[2].Line)

	// Tiers never interleave.
	for i := 1; i < len(rep.Findings); i++ {
		assert.LessOrEqual(t, int(rep.Findings[i].Severity), int(rep.Findings[i-1].Severity))
	}
}

func TestMaxSeverity(t *testing.T) {
	rep := Build(nil, sampleFindings())
	assert.Equal(t, model.SeverityCritical, rep.MaxSeverity())

	empty := Build(nil, nil)
	assert.Equal(t, model.Severity(0), empty.MaxSeverity())
	assert.Equal(t, "No findings", empty.Summary())
}

func TestTextOrderCriticalBeforeHigh(t *testing.T) {
	rep := Build(nil, sampleFindings())

	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, rep))

	out := buf.String()
	critIdx := strings.Index(out, "CRITICAL")
	highIdx := strings.Index(out, "HIGH")
	require.GreaterOrEqual(t, critIdx, 0)
	require.GreaterOrEqual(t, highIdx, 0)
	assert.Less(t, critIdx, highIdx, "critical section must precede high section")
}

func TestNoFindingsBranch(t *testing.T) {
	rep := Build(nil, nil)

	for name, w := range map[string]Writer{
		"text":     &TextWriter{},
		"markdown": &MarkdownWriter{},
		"html":     &HTMLWriter{},
	} {
		var buf bytes.Buffer
		require.NoError(t, w.Write(&buf, rep), name)
		assert.Contains(t, buf.String(), "No findings", "%s writer must render the empty branch explicitly", name)
	}
}

func TestJSONWriter(t *testing.T) {
	rep := Build(nil, sampleFindings())

	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, rep))

	var decoded struct {
		Summary  string         `json:"summary"`
		Counts   map[string]int `json:"counts"`
		Total    int            `json:"total"`
		Findings []struct {
			Rule     string `json:"rule"`
			Severity string `json:"severity"`
			File     string `json:"file"`
			Line     int    `json:"line"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 5, decoded.Total)
	assert.Equal(t, 1, decoded.Counts["critical"])
	assert.Equal(t, 2, decoded.Counts["high"])
	assert.Equal(t, 1, decoded.Counts["medium"])
	assert.Equal(t, 1, decoded.Counts["low"])
	require.NotEmpty(t, decoded.Findings)
	assert.Equal(t, "secret-literal", decoded.Findings[0].Rule)
}

func TestMarkdownWriter(t *testing.T) {
	rep := Build(nil, sampleFindings())

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "### Critical (1)")
	assert.Contains(t, out, "| `z/auth.go:5` | secret-literal |")
	assert.Less(t, strings.Index(out, "### Critical"), strings.Index(out, "### High"))
}

func TestHTMLWriterEscapes(t *testing.T) {
	findings := []model.Finding{{
		RuleID: "custom", File: "tpl.txt", Line: 1,
		Severity: model.SeverityLow,
		Message:  `Matched custom: <script>alert("x")</script>`,
	}}
	rep := Build(nil, findings)

	var buf bytes.Buffer
	require.NoError(t, (&HTMLWriter{}).Write(&buf, rep))
	assert.NotContains(t, buf.String(), "<script>alert")
}

func TestVerifyCountsMismatch(t *testing.T) {
	rep := Build(nil, sampleFindings())
	rep.Counts[model.SeverityLow] = 0 // corrupt the invariant

	require.ErrorIs(t, rep.Verify(), ErrRenderCounts)

	var buf bytes.Buffer
	assert.ErrorIs(t, (&TextWriter{}).Write(&buf, rep), ErrRenderCounts)
	assert.ErrorIs(t, (&JSONWriter{}).Write(&buf, rep), ErrRenderCounts)
}

func TestMessagePlaceholder(t *testing.T) {
	rep := Build(nil, []model.Finding{{
		RuleID: "blank", File: "f.go", Line: 2, Severity: model.SeverityLow,
	}})

	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, rep))
	assert.Contains(t, buf.String(), "(message unavailable)")
}
