// Package scanner implements the built-in heuristic analyzer: an ordered
// set of pattern rules applied line by line, no network, no state.
package scanner

import (
	"strings"

	"github.com/ludo-technologies/crev/domain"
)

// Scanner applies a fixed rule set to source text. Stateless and
// deterministic: identical input yields a byte-identical issue list.
type Scanner struct {
	rules []Rule
}

// NewScanner creates a scanner with the built-in rules
func NewScanner() *Scanner {
	return &Scanner{rules: DefaultRules()}
}

// NewScannerWithRules creates a scanner with a custom rule set
func NewScannerWithRules(rules []Rule) *Scanner {
	return &Scanner{rules: rules}
}

// Scan evaluates every rule against every line of content. Issue order is
// stable: line order first, then rule-registration order within a line.
func (s *Scanner) Scan(filePath, content, language string) []domain.Issue {
	issues := make([]domain.Issue, 0)
	lines := strings.Split(content, "\n")

	for lineNum, line := range lines {
		for _, rule := range s.rules {
			if !rule.appliesTo(language) {
				continue
			}
			if rule.Pattern.MatchString(line) {
				issues = append(issues, domain.Issue{
					Category:   rule.Category,
					Severity:   rule.Severity,
					File:       filePath,
					Line:       lineNum + 1,
					Message:    rule.Message,
					Suggestion: rule.Suggestion,
					RuleID:     rule.ID,
					Source:     domain.SourceHeuristic,
				})
			}
		}
	}

	return issues
}

func (r Rule) appliesTo(language string) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == language {
			return true
		}
	}
	return false
}
