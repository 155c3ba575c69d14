package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/metrics"
)

// CodeClimateID is the registry id of the Code Climate adapter
const CodeClimateID = "codeclimate"

// ccSeverities covers the documented Code Climate severity vocabulary
var ccSeverities = map[string]domain.IssueSeverity{
	"blocker":  domain.SeverityCritical,
	"critical": domain.SeverityCritical,
	"major":    domain.SeverityHigh,
	"minor":    domain.SeverityLow,
	"info":     domain.SeverityInfo,
}

// ccCategories covers the documented Code Climate category vocabulary
var ccCategories = map[string]domain.IssueCategory{
	"bug risk":    domain.CategoryBug,
	"security":    domain.CategorySecurity,
	"performance": domain.CategoryPerformance,
	"style":       domain.CategoryStyle,
	"clarity":     domain.CategoryMaintainability,
	"complexity":  domain.CategoryMaintainability,
	"duplication": domain.CategoryMaintainability,
}

// ccIssue is the raw vendor issue shape, confined to this adapter
type ccIssue struct {
	CheckName   string   `json:"check_name"`
	Severity    string   `json:"severity"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation_points_description"`
	Location    struct {
		Lines struct {
			Begin int `json:"begin"`
			End   int `json:"end"`
		} `json:"lines"`
	} `json:"location"`
}

type ccAnalysisResponse struct {
	ID      string    `json:"id"`
	Version string    `json:"engine_version"`
	Issues  []ccIssue `json:"issues"`
}

// CodeClimate adapts a Code Climate-style engine API to the canonical
// provider contract.
type CodeClimate struct {
	config      domain.ProviderConfig
	client      *http.Client
	initialized bool
}

// NewCodeClimate creates an uninitialized Code Climate adapter
func NewCodeClimate() domain.Provider {
	return &CodeClimate{client: &http.Client{}}
}

// CodeClimateTemplate describes the adapter for validation and UI hints
func CodeClimateTemplate() domain.ProviderTemplate {
	return domain.ProviderTemplate{
		ID:                 CodeClimateID,
		Name:               "Code Climate",
		Description:        "Maintainability and quality analysis via a Code Climate-compatible engine API",
		SupportedLanguages: []string{"javascript", "typescript", "python", "ruby", "php", "go"},
		SupportedFeatures:  []string{domain.FeatureAnalyzeFile, domain.FeatureAnalyzeBatch, domain.FeatureHealthCheck},
		RequiredFields:     []string{"api_key", "endpoint"},
		OptionalFields:     []string{"timeout", "retry_attempts", "custom_headers", "requests_per_minute", "requests_per_day"},
		ExampleConfig: domain.ProviderConfig{
			APIKey:        "cc-api-token-0123456789",
			Endpoint:      "https://api.codeclimate.example.com",
			Timeout:       30000,
			RetryAttempts: 3,
		},
		DocumentationURL: "https://developer.codeclimate.com/",
	}
}

// ID returns the stable provider identifier
func (c *CodeClimate) ID() string { return CodeClimateID }

// Initialize validates the configuration and performs one health probe
func (c *CodeClimate) Initialize(ctx context.Context, config domain.ProviderConfig) error {
	if config.APIKey == "" {
		return domain.NewConfigInvalidError("codeclimate: api_key is required", nil)
	}
	if config.Endpoint == "" {
		return domain.NewConfigInvalidError("codeclimate: endpoint is required", nil)
	}

	c.config = config

	health := c.HealthCheck(ctx)
	if !health.IsHealthy {
		return domain.NewConfigInvalidError("codeclimate: health probe failed: "+health.ErrorMessage, nil)
	}
	c.initialized = true
	return nil
}

// SupportedLanguages returns the analyzable language ids. Pure, no I/O.
func (c *CodeClimate) SupportedLanguages() []string {
	return CodeClimateTemplate().SupportedLanguages
}

// SupportedFeatures returns the capability tags. Pure, no I/O.
func (c *CodeClimate) SupportedFeatures() []string {
	return CodeClimateTemplate().SupportedFeatures
}

// AnalyzeFile sends one file for analysis under the configured timeout and
// retry budget.
func (c *CodeClimate) AnalyzeFile(ctx context.Context, file domain.FileInput, opts domain.AnalysisOptions) (*domain.ProviderResult, error) {
	started := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.config.TimeoutDuration()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"path":     file.Path,
		"content":  file.Content,
		"language": file.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var body []byte
	err = retryTransient(callCtx, c.config.Retries(), func() error {
		var reqErr error
		body, reqErr = doJSON(callCtx, c.client, "POST", c.endpoint("/v1/analyze"), c.headers(), payload)
		return reqErr
	})
	if err != nil {
		return nil, err
	}

	var vendor ccAnalysisResponse
	if err := json.Unmarshal(body, &vendor); err != nil {
		return nil, domain.NewProviderUnavailableError("codeclimate: malformed analysis response", err)
	}

	issues := make([]domain.Issue, 0, len(vendor.Issues))
	for _, vi := range vendor.Issues {
		issues = append(issues, c.mapIssue(file.Path, vi))
	}

	analysisID := vendor.ID
	if analysisID == "" {
		analysisID = uuid.NewString()
	}

	return &domain.ProviderResult{
		ProviderID:      CodeClimateID,
		ProviderVersion: vendor.Version,
		AnalysisID:      analysisID,
		Timestamp:       time.Now(),
		Duration:        time.Since(started),
		Issues:          issues,
		Statistics:      metrics.StatisticsFromIssues(issues),
		RawPayload:      string(body),
	}, nil
}

// AnalyzeBatch analyzes files one by one; partial success is a normal outcome
func (c *CodeClimate) AnalyzeBatch(ctx context.Context, files []domain.FileInput, opts domain.AnalysisOptions) (*domain.BatchResult, error) {
	batch := &domain.BatchResult{
		Processed: make([]*domain.ProviderResult, 0, len(files)),
		Failed:    make([]domain.FileError, 0),
	}
	for _, file := range files {
		result, err := c.AnalyzeFile(ctx, file, opts)
		if err != nil {
			batch.Failed = append(batch.Failed, domain.FileError{Path: file.Path, Err: err})
			continue
		}
		batch.Processed = append(batch.Processed, result)
	}
	return batch, nil
}

// HealthCheck probes the ping endpoint; it never returns an error
func (c *CodeClimate) HealthCheck(ctx context.Context) domain.HealthStatus {
	started := time.Now()
	status := domain.HealthStatus{LastChecked: started}

	if c.config.Endpoint == "" {
		status.ErrorMessage = "no endpoint configured"
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.config.TimeoutDuration())
	defer cancel()

	_, err := doJSON(probeCtx, c.client, "GET", c.endpoint("/v1/ping"), c.headers(), nil)
	status.ResponseTime = time.Since(started)
	if err != nil {
		status.ErrorMessage = unwrapClassification(err).Error()
		return status
	}
	status.IsHealthy = true
	return status
}

func (c *CodeClimate) mapIssue(filePath string, vi ccIssue) domain.Issue {
	severity, ok := ccSeverities[strings.ToLower(vi.Severity)]
	if !ok {
		severity = domain.DefaultSeverity
	}

	category := domain.DefaultCategory
	if len(vi.Categories) > 0 {
		if mapped, ok := ccCategories[strings.ToLower(vi.Categories[0])]; ok {
			category = mapped
		}
	}

	line := vi.Location.Lines.Begin
	if line < 1 {
		line = 1
	}

	return domain.Issue{
		Category: category,
		Severity: severity,
		File:     filePath,
		Line:     line,
		EndLine:  vi.Location.Lines.End,
		Message:  vi.Description,
		RuleID:   vi.CheckName,
		Source:   CodeClimateID,
	}
}

func (c *CodeClimate) endpoint(path string) string {
	return strings.TrimRight(c.config.Endpoint, "/") + path
}

func (c *CodeClimate) headers() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	}
	for k, v := range c.config.CustomHeaders {
		headers[k] = v
	}
	return headers
}
