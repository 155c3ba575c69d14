package domain

import (
	"context"
	"time"
)

// FileInput is one file handed to an analysis source
type FileInput struct {
	// Path is the file path as resolved by the walk
	Path string `json:"path"`

	// Content is the full file text
	Content string `json:"content"`

	// Language is the detected language id (e.g. "javascript", "go")
	Language string `json:"language"`
}

// AnalysisOptions tunes a single analysis invocation
type AnalysisOptions struct {
	// Timeout bounds one provider call; zero means the provider default
	Timeout time.Duration `json:"timeout,omitempty"`

	// Detailed requests richer descriptions when the source supports them
	Detailed bool `json:"detailed,omitempty"`
}

// AnalysisStatistics holds per-file or aggregate counters
type AnalysisStatistics struct {
	TotalLines   int `json:"total_lines" yaml:"total_lines"`
	CodeLines    int `json:"code_lines" yaml:"code_lines"`
	CommentLines int `json:"comment_lines" yaml:"comment_lines"`
	BlankLines   int `json:"blank_lines" yaml:"blank_lines"`

	// Complexity is the keyword-weighted cyclomatic estimate
	Complexity int `json:"complexity" yaml:"complexity"`

	// MaintainabilityIndex is the derived 0-100 score
	MaintainabilityIndex int `json:"maintainability_index" yaml:"maintainability_index"`

	// IssuesByCategory has every canonical category as a key, default 0
	IssuesByCategory map[IssueCategory]int `json:"issues_by_category" yaml:"issues_by_category"`

	// IssuesBySeverity has every canonical severity as a key, default 0
	IssuesBySeverity map[IssueSeverity]int `json:"issues_by_severity" yaml:"issues_by_severity"`
}

// NewAnalysisStatistics returns statistics with all taxonomy keys present
func NewAnalysisStatistics() AnalysisStatistics {
	s := AnalysisStatistics{
		IssuesByCategory: make(map[IssueCategory]int, len(AllCategories())),
		IssuesBySeverity: make(map[IssueSeverity]int, len(AllSeverities())),
	}
	for _, c := range AllCategories() {
		s.IssuesByCategory[c] = 0
	}
	for _, sev := range AllSeverities() {
		s.IssuesBySeverity[sev] = 0
	}
	return s
}

// CountIssues fills the category/severity counters from an issue list
func (s *AnalysisStatistics) CountIssues(issues []Issue) {
	for _, is := range issues {
		s.IssuesByCategory[is.Category]++
		s.IssuesBySeverity[is.Severity]++
	}
}

// ProviderResult is the output of one provider for one run
type ProviderResult struct {
	// ProviderID identifies the provider that produced this result
	ProviderID string `json:"provider_id" yaml:"provider_id"`

	// ProviderVersion is the adapter or vendor version string
	ProviderVersion string `json:"provider_version,omitempty" yaml:"provider_version,omitempty"`

	// AnalysisID is an opaque id for this analysis
	AnalysisID string `json:"analysis_id" yaml:"analysis_id"`

	// Timestamp is when the analysis completed
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Duration is the total processing time
	Duration time.Duration `json:"duration_ms" yaml:"duration_ms"`

	// Issues are the normalized findings
	Issues []Issue `json:"issues" yaml:"issues"`

	// Statistics are the provider's own counters
	Statistics AnalysisStatistics `json:"statistics" yaml:"statistics"`

	// Failed marks a result that represents a caught provider failure
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`

	// Error is the failure description when Failed is true
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// RawPayload is the unparsed vendor response, kept only for debugging
	RawPayload string `json:"-" yaml:"-"`
}

// FileError pairs a file path with the error that prevented its analysis
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// BatchResult separates processed files from failed ones; partial success
// is a normal outcome, not a failure of the whole batch.
type BatchResult struct {
	// Processed holds one result per successfully analyzed file
	Processed []*ProviderResult `json:"processed"`

	// Failed holds the files that could not be analyzed
	Failed []FileError `json:"failed"`
}

// HealthStatus is the outcome of a provider health probe. Health checks
// never fail; any problem is reported inside the status record.
type HealthStatus struct {
	IsHealthy      bool          `json:"is_healthy" yaml:"is_healthy"`
	ResponseTime   time.Duration `json:"response_time_ms" yaml:"response_time_ms"`
	LastChecked    time.Time     `json:"last_checked" yaml:"last_checked"`
	ErrorMessage   string        `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// ProviderConfig holds per-provider connection settings. The Registry owns
// these values; adapters read them at invocation time and never mutate them.
type ProviderConfig struct {
	// APIKey is the vendor credential
	APIKey string `json:"api_key" yaml:"api_key"`

	// Endpoint is the vendor base URL
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Timeout bounds one analysis call in milliseconds
	Timeout int `json:"timeout" yaml:"timeout"`

	// RetryAttempts bounds retries for transient failures
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts"`

	// CustomHeaders are extra headers sent on every request
	CustomHeaders map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`

	// RequestsPerMinute is the vendor rate limit hint, 0 = unknown
	RequestsPerMinute int `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`

	// RequestsPerDay is the vendor rate limit hint, 0 = unknown
	RequestsPerDay int `json:"requests_per_day,omitempty" yaml:"requests_per_day,omitempty"`
}

// TimeoutDuration returns the configured timeout with the 30s default
func (c ProviderConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// Retries returns the configured retry budget with the default of 3
func (c ProviderConfig) Retries() int {
	if c.RetryAttempts < 0 {
		return 3
	}
	return c.RetryAttempts
}

// ProviderTemplate is the static, built-in description of a provider type.
// Immutable; used only for validation and UI hints.
type ProviderTemplate struct {
	ID                 string            `json:"id" yaml:"id"`
	Name               string            `json:"name" yaml:"name"`
	Description        string            `json:"description" yaml:"description"`
	SupportedLanguages []string          `json:"supported_languages" yaml:"supported_languages"`
	SupportedFeatures  []string          `json:"supported_features" yaml:"supported_features"`
	RequiredFields     []string          `json:"required_fields" yaml:"required_fields"`
	OptionalFields     []string          `json:"optional_fields" yaml:"optional_fields"`
	ExampleConfig      ProviderConfig    `json:"example_config" yaml:"example_config"`
	DocumentationURL   string            `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
}

// Provider feature tags advertised through SupportedFeatures
const (
	FeatureAnalyzeFile  = "analyze-file"
	FeatureAnalyzeBatch = "analyze-batch"
	FeatureHealthCheck  = "health-check"
)

// Provider is the capability contract every third-party analysis source
// must implement.
type Provider interface {
	// ID returns the stable provider identifier
	ID() string

	// Initialize validates the config against the provider's template and
	// performs one health probe; it must fail before any analysis call
	// when a required credential is missing.
	Initialize(ctx context.Context, config ProviderConfig) error

	// AnalyzeFile analyzes a single file under the caller-supplied options
	AnalyzeFile(ctx context.Context, file FileInput, opts AnalysisOptions) (*ProviderResult, error)

	// AnalyzeBatch analyzes several files; partial success is first-class
	AnalyzeBatch(ctx context.Context, files []FileInput, opts AnalysisOptions) (*BatchResult, error)

	// SupportedLanguages returns the language ids this provider analyzes.
	// Pure, no I/O.
	SupportedLanguages() []string

	// SupportedFeatures returns the provider's capability tags. Pure, no I/O.
	SupportedFeatures() []string

	// HealthCheck probes the vendor; it never returns an error, a failed
	// probe is reported inside the status.
	HealthCheck(ctx context.Context) HealthStatus
}

// ProviderFactory constructs an uninitialized provider instance
type ProviderFactory func() Provider

// CompletionClient is the opaque text-completion capability the AI
// analyzer is built on.
type CompletionClient interface {
	// Complete performs one single-shot completion
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name identifies the backing model provider
	Name() string
}

// SettingsStore is the external persistence boundary for provider
// configuration. Values are opaque serialized strings; this core only
// requires that they round-trip.
type SettingsStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}
