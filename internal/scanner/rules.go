package scanner

import (
	"regexp"

	"github.com/ludo-technologies/crev/domain"
)

// Rule is one pattern-based heuristic check. Rules are evaluated per line
// in registration order; a rule never fails, it either matches or not.
type Rule struct {
	ID         string
	Category   domain.IssueCategory
	Severity   domain.IssueSeverity
	Pattern    *regexp.Regexp
	Message    string
	Suggestion string

	// Languages restricts the rule; empty means all languages
	Languages []string
}

// defaultRules is the built-in rule set. Registration order is part of the
// scanner's deterministic output contract, so new rules go at the end of
// their category block.
var defaultRules = []Rule{
	// Security
	{
		ID:         "SEC001",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityCritical,
		Pattern:    regexp.MustCompile(`(?i)(execute|query|raw)\s*\(\s*["'].*\+.*["']`),
		Message:    "Potential SQL injection: string concatenation in query",
		Suggestion: "Use parameterized queries instead",
	},
	{
		ID:         "SEC002",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityCritical,
		Pattern:    regexp.MustCompile(`(?i)(exec\.Command|os\.system|subprocess\.|child_process\.exec)\s*\([^)]*\+`),
		Message:    "Potential command injection: dynamic input in command execution",
		Suggestion: "Sanitize inputs or use safer alternatives",
	},
	{
		ID:         "SEC003",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityCritical,
		Pattern:    regexp.MustCompile(`(?i)(password|secret|api_key|apikey|token|credential)\s*[:=]\s*["'][^"']{8,}["']`),
		Message:    "Hardcoded secret detected",
		Suggestion: "Use environment variables or a secret manager",
	},
	{
		ID:         "SEC004",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityHigh,
		Pattern:    regexp.MustCompile(`(?i)(innerHTML|outerHTML|document\.write)\s*=`),
		Message:    "Potential XSS: unsafe DOM manipulation",
		Suggestion: "Use textContent or sanitize HTML input",
		Languages:  []string{"javascript", "typescript"},
	},
	{
		ID:         "SEC005",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityHigh,
		Pattern:    regexp.MustCompile(`(?i)\beval\s*\(`),
		Message:    "Use of eval on dynamic input",
		Suggestion: "Avoid eval; parse input explicitly",
	},
	{
		ID:         "SEC006",
		Category:   domain.CategorySecurity,
		Severity:   domain.SeverityMedium,
		Pattern:    regexp.MustCompile(`(?i)\b(md5|sha1|des|rc4)\b\s*[.(]`),
		Message:    "Weak cryptographic algorithm detected",
		Suggestion: "Use SHA-256 or stronger algorithms",
	},

	// Bug
	{
		ID:         "BUG001",
		Category:   domain.CategoryBug,
		Severity:   domain.SeverityHigh,
		Pattern:    regexp.MustCompile(`[^=!<>]==[^=]`),
		Message:    "Loose equality comparison",
		Suggestion: "Use === for strict equality",
		Languages:  []string{"javascript", "typescript"},
	},
	{
		ID:         "BUG002",
		Category:   domain.CategoryBug,
		Severity:   domain.SeverityMedium,
		Pattern:    regexp.MustCompile(`catch\s*(\([^)]*\))?\s*\{\s*\}`),
		Message:    "Empty catch block swallows errors",
		Suggestion: "Handle or log the caught error",
	},

	// Quality
	{
		ID:         "QUA001",
		Category:   domain.CategoryQuality,
		Severity:   domain.SeverityInfo,
		Pattern:    regexp.MustCompile(`(?i)(console\.log|fmt\.Print|print\()`),
		Message:    "Debug/logging statement detected",
		Suggestion: "Remove or route through a logger before release",
	},
	{
		ID:         "QUA002",
		Category:   domain.CategoryQuality,
		Severity:   domain.SeverityLow,
		Pattern:    regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX)\b`),
		Message:    "Unresolved task marker",
		Suggestion: "Resolve or track the marker in an issue",
	},
	{
		ID:         "QUA003",
		Category:   domain.CategoryQuality,
		Severity:   domain.SeverityLow,
		Pattern:    regexp.MustCompile(`\bvar\s+\w+`),
		Message:    "Use of var instead of let/const",
		Suggestion: "Prefer const, or let when reassignment is needed",
		Languages:  []string{"javascript", "typescript"},
	},

	// Performance
	{
		ID:         "PERF001",
		Category:   domain.CategoryPerformance,
		Severity:   domain.SeverityMedium,
		Pattern:    regexp.MustCompile(`\.(forEach|map|filter)\([^)]*\)\s*\.\s*(forEach|map|filter)\(`),
		Message:    "Chained array iterations traverse the collection repeatedly",
		Suggestion: "Combine passes or use a single loop",
		Languages:  []string{"javascript", "typescript"},
	},
	{
		ID:         "PERF002",
		Category:   domain.CategoryPerformance,
		Severity:   domain.SeverityLow,
		Pattern:    regexp.MustCompile(`(?i)JSON\.parse\(\s*JSON\.stringify\(`),
		Message:    "Deep clone via JSON round-trip",
		Suggestion: "Use structuredClone or a targeted copy",
		Languages:  []string{"javascript", "typescript"},
	},

	// Style
	{
		ID:       "STY001",
		Category: domain.CategoryStyle,
		Severity: domain.SeverityInfo,
		Pattern:  regexp.MustCompile(`.{121,}`),
		Message:  "Line exceeds 120 characters",
	},
	{
		ID:       "STY002",
		Category: domain.CategoryStyle,
		Severity: domain.SeverityInfo,
		Pattern:  regexp.MustCompile(`[^\s]\s+$`),
		Message:  "Trailing whitespace",
	},
}

// DefaultRules returns the built-in rule set in registration order
func DefaultRules() []Rule {
	return defaultRules
}
