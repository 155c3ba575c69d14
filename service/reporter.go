package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/crev/domain"
)

// MarkdownReporter renders a ReviewResult as a markdown document. It is a
// pure function of the result: two identical results render identically.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a markdown reporter
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// severityHeadings drives the issue grouping, most severe first
var severityHeadings = []struct {
	severity domain.IssueSeverity
	label    string
}{
	{domain.SeverityCritical, "Critical"},
	{domain.SeverityHigh, "High"},
	{domain.SeverityMedium, "Medium"},
	{domain.SeverityLow, "Low"},
	{domain.SeverityInfo, "Info"},
}

// Render produces the full markdown report
func (r *MarkdownReporter) Render(result *domain.ReviewResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Code Review Report\n\n")
	fmt.Fprintf(&b, "**Target:** `%s`  \n", result.Target)
	fmt.Fprintf(&b, "**Generated:** %s  \n", result.GeneratedAt)
	fmt.Fprintf(&b, "**Duration:** %dms  \n", result.Duration.Milliseconds())
	fmt.Fprintf(&b, "**Run:** %s\n\n", result.RunID)

	r.renderSummary(&b, result.Summary)
	r.renderIssues(&b, result.Issues)
	r.renderMetrics(&b, result.Metrics)
	r.renderProviderResults(&b, result.ProviderResults)
	r.renderWarnings(&b, result.Warnings)

	return b.String()
}

func (r *MarkdownReporter) renderSummary(b *strings.Builder, summary domain.ReviewSummary) {
	fmt.Fprintf(b, "## Summary\n\n")
	fmt.Fprintf(b, "| Severity | Count |\n")
	fmt.Fprintf(b, "|----------|-------|\n")
	for _, h := range severityHeadings {
		fmt.Fprintf(b, "| %s | %d |\n", h.label, summary.Count(h.severity))
	}
	fmt.Fprintf(b, "| **Total** | **%d** |\n\n", summary.TotalIssues)
	fmt.Fprintf(b, "Files analyzed: %d\n\n", summary.FilesAnalyzed)
}

func (r *MarkdownReporter) renderIssues(b *strings.Builder, issues []domain.Issue) {
	fmt.Fprintf(b, "## Issues\n\n")
	if len(issues) == 0 {
		fmt.Fprintf(b, "No issues found.\n\n")
		return
	}

	grouped := make(map[domain.IssueSeverity][]domain.Issue, len(severityHeadings))
	for _, is := range issues {
		grouped[is.Severity] = append(grouped[is.Severity], is)
	}

	for _, h := range severityHeadings {
		group := grouped[h.severity]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s (%d)\n\n", h.label, len(group))
		for _, is := range group {
			r.renderIssue(b, is)
		}
	}
}

func (r *MarkdownReporter) renderIssue(b *strings.Builder, is domain.Issue) {
	location := is.File
	if is.Line > 0 {
		location = fmt.Sprintf("%s:%d", is.File, is.Line)
	}
	fmt.Fprintf(b, "- **%s** [%s] %s", location, is.Category, is.Message)
	if is.RuleID != "" {
		fmt.Fprintf(b, " (%s)", is.RuleID)
	}
	fmt.Fprintf(b, "\n")
	if is.Description != "" {
		fmt.Fprintf(b, "  %s\n", is.Description)
	}
	if is.Suggestion != "" {
		fmt.Fprintf(b, "  *Suggestion:* %s\n", is.Suggestion)
	}
	fmt.Fprintf(b, "  *Source:* %s\n", is.Source)
}

func (r *MarkdownReporter) renderMetrics(b *strings.Builder, metrics domain.ReviewMetrics) {
	fmt.Fprintf(b, "\n## Metrics\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n")
	fmt.Fprintf(b, "|--------|-------|\n")
	fmt.Fprintf(b, "| Lines of code | %d |\n", metrics.LinesOfCode)
	fmt.Fprintf(b, "| Complexity | %d |\n", metrics.Complexity)
	fmt.Fprintf(b, "| Maintainability index | %d |\n\n", metrics.MaintainabilityIndex)
}

// renderProviderResults lists every provider run. A failed run is a row
// like any other; the failure shows up in its status column.
func (r *MarkdownReporter) renderProviderResults(b *strings.Builder, results []*domain.ProviderResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(b, "## Providers\n\n")
	fmt.Fprintf(b, "| Provider | Status | Issues | Duration |\n")
	fmt.Fprintf(b, "|----------|--------|--------|----------|\n")
	for _, pr := range results {
		status := "ok"
		if pr.Failed {
			status = fmt.Sprintf("failed: %s", pr.Error)
		}
		fmt.Fprintf(b, "| %s | %s | %d | %dms |\n",
			pr.ProviderID, status, len(pr.Issues), pr.Duration.Milliseconds())
	}
	fmt.Fprintf(b, "\n")
}

func (r *MarkdownReporter) renderWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(b, "## Warnings\n\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	fmt.Fprintf(b, "\n")
}

var _ domain.Reporter = (*MarkdownReporter)(nil)
