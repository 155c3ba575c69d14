// Package metrics computes line counts, the keyword-weighted complexity
// estimate, and the maintainability index used by the review engine.
package metrics

import (
	"math"
	"regexp"
	"strings"

	"github.com/ludo-technologies/crev/domain"
)

// Empirical constants carried over for behavioral compatibility. Tunable,
// not principled; see the maintainability formula below.
var (
	// ComplexityKeywords each add 1 to the base complexity of 1 per occurrence
	ComplexityKeywords = []string{"if", "else", "while", "for", "case", "catch"}

	// ComplexityOperators are counted as plain substrings
	ComplexityOperators = []string{"&&", "||", "?"}
)

// IssuePenalty is the maintainability reduction per issue at directory scope
const IssuePenalty = 2

var keywordPatterns = buildKeywordPatterns()

func buildKeywordPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(ComplexityKeywords))
	for _, kw := range ComplexityKeywords {
		patterns = append(patterns, regexp.MustCompile(`\b`+kw+`\b`))
	}
	return patterns
}

// Complexity returns the keyword-weighted cyclomatic estimate for content:
// a base of 1 plus 1 per control-flow keyword or operator occurrence.
func Complexity(content string) int {
	complexity := 1
	for _, p := range keywordPatterns {
		complexity += len(p.FindAllStringIndex(content, -1))
	}
	for _, op := range ComplexityOperators {
		complexity += strings.Count(content, op)
	}
	return complexity
}

// MaintainabilityIndex computes
// max(0, round(171 - 5.2*ln(loc) - 0.23*complexity)). There is no upper
// clamp; zero lines yields 0 since nothing was measured.
func MaintainabilityIndex(linesOfCode, complexity int) int {
	if linesOfCode <= 0 {
		return 0
	}
	v := 171.0 - 5.2*math.Log(float64(linesOfCode)) - 0.23*float64(complexity)
	idx := int(math.Round(v))
	if idx < 0 {
		return 0
	}
	return idx
}

// AggregateMaintainabilityIndex applies the directory-scope issue penalty
// on top of the base formula.
func AggregateMaintainabilityIndex(linesOfCode, complexity, issueCount int) int {
	idx := MaintainabilityIndex(linesOfCode, complexity) - IssuePenalty*issueCount
	if idx < 0 {
		return 0
	}
	return idx
}

// CountLines splits content into total, code, comment and blank line counts
func CountLines(content string) (total, code, comment, blank int) {
	lines := strings.Split(content, "\n")
	total = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blank++
		case isCommentLine(trimmed):
			comment++
		default:
			code++
		}
	}
	return total, code, comment, blank
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "#")
}

// FileStatistics computes the full per-file statistics record from the file
// content and its merged issue list.
func FileStatistics(content string, issues []domain.Issue) domain.AnalysisStatistics {
	stats := domain.NewAnalysisStatistics()
	stats.TotalLines, stats.CodeLines, stats.CommentLines, stats.BlankLines = CountLines(content)
	stats.Complexity = Complexity(content)
	stats.MaintainabilityIndex = MaintainabilityIndex(stats.CodeLines, stats.Complexity)
	stats.CountIssues(issues)
	return stats
}

// StatisticsFromIssues derives statistics strictly from a mapped issue list,
// used when a vendor supplies no richer metrics.
func StatisticsFromIssues(issues []domain.Issue) domain.AnalysisStatistics {
	stats := domain.NewAnalysisStatistics()
	stats.CountIssues(issues)
	return stats
}
