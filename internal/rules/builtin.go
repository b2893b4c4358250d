package rules

import (
	"regexp"

	"github.com/sprite-ai/revet/internal/model"
)

// Builtin detection patterns, compiled once at init.
var (
	secretLiteralPat  = regexp.MustCompile(`(?i)\b(api[_-]?key|secret|password|passwd|access[_-]?token|auth[_-]?token|private[_-]?key)\b\s*[:=]+\s*["'][^"']{4,}["']`)
	privateKeyPat     = regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`)
	conflictMarkerPat = regexp.MustCompile(`^(<{7}|>{7})(\s|$)`)
	todoPat           = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX)\b`)
	commentedCodePat  = regexp.MustCompile(`^\s*(//|#)\s*(func |def |class |if |for |while |return |import |from |const |let |var )`)
	debugLeftoverPat  = regexp.MustCompile(`(?i)(console\.(log|debug|trace)\(|System\.out\.println|binding\.pry|\bdebugger;|pdb\.set_trace\()`)
	sqlStatementPat   = regexp.MustCompile(`(?i)\b(INSERT\s+INTO|DELETE\s+FROM|DROP\s+TABLE|ALTER\s+TABLE|TRUNCATE\s+TABLE|UPDATE\s+\w+\s+SET)\b`)

	goInsecureTLSPat = regexp.MustCompile(`InsecureSkipVerify\s*:\s*true`)
	goSubprocessPat  = regexp.MustCompile(`exec\.Command\(`)
	goWeakHashPat    = regexp.MustCompile(`\b(md5|sha1)\.(New|Sum)\(`)

	pyBroadExceptPat = regexp.MustCompile(`(?i)except(\s+Exception)?\s*:`)
	pySubprocessPat  = regexp.MustCompile(`(?i)(os\.system\(|subprocess\.(run|call|Popen|check_output)\()`)
	pyEvalPat        = regexp.MustCompile(`\b(eval|exec)\(`)

	jsSwallowedCatchPat = regexp.MustCompile(`\.catch\(\s*(_|err|\(\s*\))\s*=>`)
	jsChildProcessPat   = regexp.MustCompile(`(child_process|execSync\(|spawnSync\()`)
	jsEvalPat           = regexp.MustCompile(`\beval\(`)

	rbBroadRescuePat = regexp.MustCompile(`(?i)rescue(\s+StandardError)?\s*$`)

	javaBroadCatchPat = regexp.MustCompile(`catch\s*\(\s*(Exception|Throwable)\b`)

	goDepPat  = regexp.MustCompile(`^\s*(require\s+)?[\w.-]+\.[a-z]{2,}/\S+\s+v\d`)
	npmDepPat = regexp.MustCompile(`^\s*"[@\w./-]+"\s*:\s*"[~^]?\d`)
	pipDepPat = regexp.MustCompile(`^\s*[A-Za-z0-9._-]+\s*(==|>=|<=|~=|!=)`)
)

// builtinRules returns the builtin checklist: the base set first, then
// language- and manifest-specific sets.
func builtinRules() []Rule {
	return []Rule{
		// Base set: applied to every changed file.
		{
			ID:       "secret-literal",
			Severity: model.SeverityCritical,
			Pattern:  secretLiteralPat,
			Message:  "Hardcoded secret: %s",
		},
		{
			ID:       "private-key-material",
			Severity: model.SeverityCritical,
			Pattern:  privateKeyPat,
			Message:  "Private key material committed",
		},
		{
			ID:       "merge-conflict-marker",
			Severity: model.SeverityHigh,
			Pattern:  conflictMarkerPat,
			Message:  "Merge conflict marker left in place",
		},
		{
			ID:       "sql-statement",
			Severity: model.SeverityHigh,
			Pattern:  sqlStatementPat,
			Message:  "Raw SQL statement in change: %s",
		},
		{
			ID:       "debug-leftover",
			Severity: model.SeverityMedium,
			Pattern:  debugLeftoverPat,
			Message:  "Debug output left in change: %s",
		},
		{
			ID:       "commented-code",
			Severity: model.SeverityLow,
			Pattern:  commentedCodePat,
			Message:  "Commented-out code: %s",
		},
		{
			ID:       "todo-marker",
			Severity: model.SeverityLow,
			Pattern:  todoPat,
			Message:  "Unresolved marker: %s",
		},

		// Go.
		{
			ID:       "go-insecure-tls",
			Severity: model.SeverityHigh,
			Files:    []string{"*.go"},
			Pattern:  goInsecureTLSPat,
			Message:  "TLS verification disabled: %s",
		},
		{
			ID:       "go-subprocess",
			Severity: model.SeverityHigh,
			Files:    []string{"*.go"},
			Pattern:  goSubprocessPat,
			Message:  "Subprocess execution: %s",
		},
		{
			ID:       "go-weak-hash",
			Severity: model.SeverityMedium,
			Files:    []string{"*.go"},
			Pattern:  goWeakHashPat,
			Message:  "Weak hash primitive: %s",
		},

		// Python.
		{
			ID:       "py-broad-except",
			Severity: model.SeverityMedium,
			Files:    []string{"*.py"},
			Pattern:  pyBroadExceptPat,
			Message:  "Broad exception handling: %s",
		},
		{
			ID:       "py-subprocess",
			Severity: model.SeverityHigh,
			Files:    []string{"*.py"},
			Pattern:  pySubprocessPat,
			Message:  "Subprocess execution: %s",
		},
		{
			ID:       "py-eval",
			Severity: model.SeverityHigh,
			Files:    []string{"*.py"},
			Pattern:  pyEvalPat,
			Message:  "Dynamic code execution: %s",
		},

		// JavaScript / TypeScript.
		{
			ID:       "js-swallowed-catch",
			Severity: model.SeverityMedium,
			Files:    []string{"*.js", "*.jsx", "*.ts", "*.tsx"},
			Pattern:  jsSwallowedCatchPat,
			Message:  "Swallowed promise rejection: %s",
		},
		{
			ID:       "js-child-process",
			Severity: model.SeverityHigh,
			Files:    []string{"*.js", "*.jsx", "*.ts", "*.tsx"},
			Pattern:  jsChildProcessPat,
			Message:  "Subprocess execution: %s",
		},
		{
			ID:       "js-eval",
			Severity: model.SeverityHigh,
			Files:    []string{"*.js", "*.jsx", "*.ts", "*.tsx"},
			Pattern:  jsEvalPat,
			Message:  "Dynamic code execution: %s",
		},

		// Ruby.
		{
			ID:       "rb-broad-rescue",
			Severity: model.SeverityMedium,
			Files:    []string{"*.rb"},
			Pattern:  rbBroadRescuePat,
			Message:  "Broad rescue: %s",
		},

		// Java.
		{
			ID:       "java-broad-catch",
			Severity: model.SeverityMedium,
			Files:    []string{"*.java"},
			Pattern:  javaBroadCatchPat,
			Message:  "Broad exception handling: %s",
		},

		// Dependency manifests.
		{
			ID:       "new-go-dependency",
			Severity: model.SeverityMedium,
			Files:    []string{"go.mod"},
			Pattern:  goDepPat,
			Message:  "New Go dependency: %s",
		},
		{
			ID:       "new-npm-dependency",
			Severity: model.SeverityMedium,
			Files:    []string{"package.json"},
			Pattern:  npmDepPat,
			Message:  "New npm dependency: %s",
		},
		{
			ID:       "new-pip-dependency",
			Severity: model.SeverityMedium,
			Files:    []string{"requirements.txt"},
			Pattern:  pipDepPat,
			Message:  "New pip dependency: %s",
		},
	}
}
