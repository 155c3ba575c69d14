package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// AnalysisType distinguishes a single-file run from a directory run
type AnalysisType string

const (
	AnalysisTypeFile      AnalysisType = "file"
	AnalysisTypeDirectory AnalysisType = "directory"
)

// ReviewRequest describes one review run
type ReviewRequest struct {
	// TargetPath is the file or directory to review
	TargetPath string

	// AnalysisType selects file or directory mode; empty means auto-detect
	AnalysisType AnalysisType

	// IncludeExtensions restricts the walk; empty means the default set
	IncludeExtensions []string

	// SeverityFilter drops issues below this severity; empty keeps all
	SeverityFilter IssueSeverity

	// CategoryFilter keeps only these categories; empty keeps all
	CategoryFilter []IssueCategory

	// EnableThirdParty turns the provider fan-out on
	EnableThirdParty bool

	// ProviderIDs restricts fan-out to a subset of enabled providers;
	// empty means every enabled provider
	ProviderIDs []string

	// Detailed requests richer issue descriptions
	Detailed bool

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
}

// ReviewSummary holds the post-filter issue counts
type ReviewSummary struct {
	TotalIssues    int `json:"total_issues" yaml:"total_issues"`
	CriticalIssues int `json:"critical_issues" yaml:"critical_issues"`
	HighIssues     int `json:"high_issues" yaml:"high_issues"`
	MediumIssues   int `json:"medium_issues" yaml:"medium_issues"`
	LowIssues      int `json:"low_issues" yaml:"low_issues"`
	InfoIssues     int `json:"info_issues" yaml:"info_issues"`
	FilesAnalyzed  int `json:"files_analyzed" yaml:"files_analyzed"`
}

// Count returns the summary counter for one severity
func (s ReviewSummary) Count(sev IssueSeverity) int {
	switch sev {
	case SeverityCritical:
		return s.CriticalIssues
	case SeverityHigh:
		return s.HighIssues
	case SeverityMedium:
		return s.MediumIssues
	case SeverityLow:
		return s.LowIssues
	case SeverityInfo:
		return s.InfoIssues
	default:
		return 0
	}
}

// ReviewMetrics is the aggregate metric subset rendered by the reporter
type ReviewMetrics struct {
	LinesOfCode          int `json:"lines_of_code" yaml:"lines_of_code"`
	Complexity           int `json:"complexity" yaml:"complexity"`
	MaintainabilityIndex int `json:"maintainability_index" yaml:"maintainability_index"`
}

// ReviewResult is the engine's final output for one run. The engine owns
// it for the duration of the run and retains nothing between runs.
type ReviewResult struct {
	// RunID is an opaque id for this run
	RunID string `json:"run_id" yaml:"run_id"`

	// Target is the reviewed path
	Target string `json:"target" yaml:"target"`

	// Summary holds post-filter counts
	Summary ReviewSummary `json:"summary" yaml:"summary"`

	// Issues is the merged, filtered, canonically ordered finding list
	Issues []Issue `json:"issues" yaml:"issues"`

	// Metrics are the aggregate statistics for the run
	Metrics ReviewMetrics `json:"metrics" yaml:"metrics"`

	// ProviderResults has one entry per provider that ran, failed ones included
	ProviderResults []*ProviderResult `json:"provider_results" yaml:"provider_results"`

	// Statistics holds per-file counters keyed by path
	Statistics map[string]AnalysisStatistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`

	// Warnings collects non-fatal problems (skipped files, AI parse failures)
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Metadata
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Duration    time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Version     string        `json:"version" yaml:"version"`
}

// ReviewEvents is the lifecycle observer contract consumed by a UI layer.
// Nil callbacks are skipped.
type ReviewEvents struct {
	OnStart    func(targetPath string)
	OnComplete func(summary ReviewSummary)
	OnError    func(message string)
}

// ReviewService defines the core review operation
type ReviewService interface {
	// Review runs the full pipeline and returns the merged result. Only
	// fatal conditions (unreadable target, missing completion capability)
	// return an error; everything else is represented inside the result.
	Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error)
}

// Reporter formats a ReviewResult into a markdown-like document. Pure
// function of the result; no side effects beyond string production.
type Reporter interface {
	Render(result *ReviewResult) string
}

// OutputFormatter writes a ReviewResult in the requested format
type OutputFormatter interface {
	Format(result *ReviewResult, format OutputFormat) (string, error)
	Write(result *ReviewResult, format OutputFormat, writer io.Writer) error
}

// SourceFileReader collects and reads reviewable source files
type SourceFileReader interface {
	CollectSourceFiles(root string, includeExtensions []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsSupportedFile(path string) bool
}

// ExecutableTask is one unit of work for the parallel executor
type ExecutableTask interface {
	Name() string
	IsEnabled() bool
	Execute(ctx context.Context) (interface{}, error)
}

// ParallelExecutor runs tasks concurrently, collecting failures instead of
// aborting on the first one
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}

// ProgressManager creates progress tasks for long-running operations
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks one task's progress
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
