package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/sprite-ai/revet/internal/model"
)

// HTMLWriter renders a standalone HTML report with highlighted snippets.
type HTMLWriter struct{}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>revet Review Report</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; background: #282a36; color: #f8f8f2; }
  h1 { color: #bd93f9; }
  h2 { margin-top: 32px; }
  .summary { background: #343746; padding: 16px; border-radius: 8px; margin-bottom: 24px; }
  .summary span { margin-right: 24px; }
  .tier-critical { color: #ff5555; font-weight: bold; }
  .tier-high { color: #ffb86c; font-weight: bold; }
  .tier-medium { color: #f1fa8c; }
  .tier-low { color: #8be9fd; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; padding: 8px 12px; background: #44475a; color: #f8f8f2; }
  td { padding: 8px 12px; border-bottom: 1px solid #44475a; }
  tr:hover { background: #343746; }
  .rule { color: #bd93f9; }
  .file { color: #8be9fd; }
  code { background: #343746; padding: 2px 6px; border-radius: 4px; font-size: 0.9em; }
  .clean { color: #50fa7b; font-size: 1.2em; }
  footer { margin-top: 32px; color: #6272a4; font-size: 0.85em; }
</style>
</head>
<body>
<h1>revet Review Report</h1>
`

func (h *HTMLWriter) Write(w io.Writer, rep *Report) error {
	if err := rep.Verify(); err != nil {
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("%s", htmlHead)

	maxTier := "none"
	if max := rep.MaxSeverity(); max != 0 {
		maxTier = max.String()
	}
	ew.printf(`<div class="summary">
  <span><strong>%d</strong> file(s) changed</span>
  <span style="color:#50fa7b">+%d</span>
  <span style="color:#ff5555">-%d</span>
  <span>Max: <span class="tier-%s">%s</span></span>
  <span>Findings: <strong>%d</strong></span>
</div>
`, rep.FilesChanged, rep.LinesAdded, rep.LinesDeleted, maxTier, maxTier, rep.Total())

	if rep.Total() == 0 {
		ew.println(`<p class="clean">No findings.</p>`)
	} else {
		for _, tier := range model.Tiers() {
			findings := rep.Tier(tier)
			if len(findings) == 0 {
				continue
			}

			ew.printf(`<h2 class="tier-%s">%s (%d)</h2>
<table>
<thead><tr><th>Location</th><th>Rule</th><th>Message</th></tr></thead>
<tbody>
`, tier.String(), strings.ToUpper(tier.String()), len(findings))

			for _, f := range findings {
				loc := f.File
				if f.Line > 0 {
					loc = fmt.Sprintf("%s:%d", f.File, f.Line)
				}
				ew.printf(`<tr><td class="file"><code>%s</code></td><td class="rule">%s</td><td>%s</td></tr>
`, htmlEscape(loc), htmlEscape(f.RuleID), renderHTMLMessage(f))
			}
			ew.println("</tbody></table>")
		}
	}

	ew.println(`<footer>Generated by <strong>revet</strong></footer>
</body>
</html>`)

	return ew.err
}

// renderHTMLMessage highlights the matched-line portion of a finding message
// when a lexer exists for the file; otherwise it escapes the message as-is.
func renderHTMLMessage(f model.Finding) string {
	msg := message(f)
	head, snippet, ok := strings.Cut(msg, ": ")
	if !ok || f.Kind == model.KindToolingError {
		return htmlEscape(msg)
	}
	highlighted, err := highlightSnippet(f.File, snippet)
	if err != nil {
		return htmlEscape(msg)
	}
	return htmlEscape(head) + ": " + highlighted
}

// highlightSnippet renders one line of source as inline highlighted HTML.
func highlightSnippet(filename, line string) (string, error) {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return "", fmt.Errorf("no lexer for %s", filename)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return "", err
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.InlineCode(true))
	if err := formatter.Format(&b, style, iterator); err != nil {
		return "", err
	}
	return b.String(), nil
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
