package domain

// IssueCategory classifies what kind of problem a finding describes
type IssueCategory string

const (
	// CategoryQuality covers general code quality problems
	CategoryQuality IssueCategory = "quality"

	// CategorySecurity covers vulnerabilities and unsafe patterns
	CategorySecurity IssueCategory = "security"

	// CategoryPerformance covers inefficient or wasteful code
	CategoryPerformance IssueCategory = "performance"

	// CategoryStyle covers formatting and naming conventions
	CategoryStyle IssueCategory = "style"

	// CategoryBug covers likely logic errors
	CategoryBug IssueCategory = "bug"

	// CategoryMaintainability covers code that is hard to change safely
	CategoryMaintainability IssueCategory = "maintainability"
)

// IssueSeverity is the ordered severity scale for findings
type IssueSeverity string

const (
	SeverityInfo     IssueSeverity = "info"
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// DefaultCategory is the fallback for unmapped vendor categories
const DefaultCategory = CategoryQuality

// DefaultSeverity is the fallback for unmapped vendor severities
const DefaultSeverity = SeverityMedium

// AllSeverities lists the canonical severities from least to most severe
func AllSeverities() []IssueSeverity {
	return []IssueSeverity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// AllCategories lists the canonical issue categories
func AllCategories() []IssueCategory {
	return []IssueCategory{
		CategoryQuality,
		CategorySecurity,
		CategoryPerformance,
		CategoryStyle,
		CategoryBug,
		CategoryMaintainability,
	}
}

// SeverityRank returns a numeric rank for ordering (higher = more severe).
// Unknown values rank below info.
func SeverityRank(s IssueSeverity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MeetsSeverity reports whether s is at or above the threshold.
// An empty threshold accepts everything.
func MeetsSeverity(s IssueSeverity, threshold IssueSeverity) bool {
	if threshold == "" {
		return true
	}
	return SeverityRank(s) >= SeverityRank(threshold)
}

// MapSeverity normalizes an arbitrary severity label into the canonical
// scale. It is the single boundary through which vendor and model
// vocabularies enter the taxonomy; unknown labels become DefaultSeverity.
func MapSeverity(raw string) IssueSeverity {
	switch IssueSeverity(normalizeLabel(raw)) {
	case SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return IssueSeverity(normalizeLabel(raw))
	}
	// Common aliases seen in vendor payloads and model output
	switch normalizeLabel(raw) {
	case "warning", "warn", "moderate":
		return SeverityMedium
	case "error", "major":
		return SeverityHigh
	case "blocker", "fatal":
		return SeverityCritical
	case "minor", "suggestion":
		return SeverityLow
	case "hint", "note", "notice":
		return SeverityInfo
	}
	return DefaultSeverity
}

// MapCategory normalizes an arbitrary category label into the canonical
// set; unknown labels become DefaultCategory.
func MapCategory(raw string) IssueCategory {
	switch IssueCategory(normalizeLabel(raw)) {
	case CategoryQuality, CategorySecurity, CategoryPerformance, CategoryStyle, CategoryBug, CategoryMaintainability:
		return IssueCategory(normalizeLabel(raw))
	}
	switch normalizeLabel(raw) {
	case "vulnerability", "security_hotspot":
		return CategorySecurity
	case "code_smell", "smell", "clarity", "complexity", "duplication":
		return CategoryMaintainability
	case "correctness", "bug_risk", "error":
		return CategoryBug
	case "formatting", "convention":
		return CategoryStyle
	}
	return DefaultCategory
}

func normalizeLabel(raw string) string {
	b := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c == ' ' || c == '-':
			b = append(b, '_')
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// TextEdit is a single proposed replacement inside a file
type TextEdit struct {
	// StartLine is the 1-based first line of the range
	StartLine int `json:"start_line" yaml:"start_line"`

	// StartColumn is the 1-based first column of the range
	StartColumn int `json:"start_column" yaml:"start_column"`

	// EndLine is the 1-based last line of the range
	EndLine int `json:"end_line" yaml:"end_line"`

	// EndColumn is the 1-based last column of the range
	EndColumn int `json:"end_column" yaml:"end_column"`

	// NewText is the replacement text
	NewText string `json:"new_text" yaml:"new_text"`
}

// Issue is one normalized finding produced by any analysis source
type Issue struct {
	// Category is always one of the canonical IssueCategory values
	Category IssueCategory `json:"category" yaml:"category"`

	// Severity is always one of the canonical IssueSeverity values
	Severity IssueSeverity `json:"severity" yaml:"severity"`

	// File is the path of the analyzed file
	File string `json:"file" yaml:"file"`

	// Line is the 1-based line number of the finding
	Line int `json:"line" yaml:"line"`

	// Column is the 1-based column, 0 when unknown
	Column int `json:"column,omitempty" yaml:"column,omitempty"`

	// EndLine is the last line of the finding range, 0 when unknown
	EndLine int `json:"end_line,omitempty" yaml:"end_line,omitempty"`

	// EndColumn is the last column of the finding range, 0 when unknown
	EndColumn int `json:"end_column,omitempty" yaml:"end_column,omitempty"`

	// Message is the short human-readable description
	Message string `json:"message" yaml:"message"`

	// Description is an optional longer elaboration
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Suggestion is an optional fix recommendation
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`

	// RuleID is a stable identifier of the rule that fired
	RuleID string `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`

	// Source identifies the producer: "heuristic", "ai", or a provider id
	Source string `json:"source" yaml:"source"`

	// Confidence is the producer's confidence in [0,1]; 0 when unknown
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Fixes are ordered proposed edits, optional
	Fixes []TextEdit `json:"fixes,omitempty" yaml:"fixes,omitempty"`
}

// Issue source values for the built-in analyzers
const (
	SourceHeuristic = "heuristic"
	SourceAI        = "ai"
)
