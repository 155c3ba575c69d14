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

// SonarQubeID is the registry id of the SonarQube adapter
const SonarQubeID = "sonarqube"

// sonarSeverities maps the full documented SonarQube severity vocabulary
// into the canonical scale. Values missing from this table fall back to
// domain.DefaultSeverity; the mapping never fails.
var sonarSeverities = map[string]domain.IssueSeverity{
	"BLOCKER":  domain.SeverityCritical,
	"CRITICAL": domain.SeverityCritical,
	"MAJOR":    domain.SeverityHigh,
	"MINOR":    domain.SeverityLow,
	"INFO":     domain.SeverityInfo,
}

// sonarTypes maps the documented issue type vocabulary into the canonical
// categories.
var sonarTypes = map[string]domain.IssueCategory{
	"BUG":              domain.CategoryBug,
	"VULNERABILITY":    domain.CategorySecurity,
	"SECURITY_HOTSPOT": domain.CategorySecurity,
	"CODE_SMELL":       domain.CategoryMaintainability,
}

// sonarIssue is the raw vendor issue shape; it never crosses the adapter
// boundary.
type sonarIssue struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Type     string  `json:"type"`
	Line     int     `json:"line"`
	Column   int     `json:"column"`
	Message  string  `json:"message"`
	Effort   string  `json:"effort"`
}

type sonarAnalysisResponse struct {
	AnalysisID string       `json:"analysisId"`
	Version    string       `json:"version"`
	Issues     []sonarIssue `json:"issues"`
}

// SonarQube adapts a SonarQube-style analysis service to the canonical
// provider contract.
type SonarQube struct {
	config      domain.ProviderConfig
	client      *http.Client
	initialized bool
}

// NewSonarQube creates an uninitialized SonarQube adapter
func NewSonarQube() domain.Provider {
	return &SonarQube{client: &http.Client{}}
}

// SonarQubeTemplate describes the adapter for validation and UI hints
func SonarQubeTemplate() domain.ProviderTemplate {
	return domain.ProviderTemplate{
		ID:                 SonarQubeID,
		Name:               "SonarQube",
		Description:        "Static analysis via a SonarQube-compatible server",
		SupportedLanguages: []string{"javascript", "typescript", "python", "go", "java", "csharp", "php"},
		SupportedFeatures:  []string{domain.FeatureAnalyzeFile, domain.FeatureAnalyzeBatch, domain.FeatureHealthCheck},
		RequiredFields:     []string{"api_key", "endpoint"},
		OptionalFields:     []string{"timeout", "retry_attempts", "custom_headers", "requests_per_minute", "requests_per_day"},
		ExampleConfig: domain.ProviderConfig{
			APIKey:        "squ_0123456789abcdef",
			Endpoint:      "https://sonar.example.com",
			Timeout:       30000,
			RetryAttempts: 3,
		},
		DocumentationURL: "https://docs.sonarsource.com/sonarqube/",
	}
}

// ID returns the stable provider identifier
func (s *SonarQube) ID() string { return SonarQubeID }

// Initialize validates the configuration and performs one health probe.
// A missing credential fails before any network call.
func (s *SonarQube) Initialize(ctx context.Context, config domain.ProviderConfig) error {
	if config.APIKey == "" {
		return domain.NewConfigInvalidError("sonarqube: api_key is required", nil)
	}
	if config.Endpoint == "" {
		return domain.NewConfigInvalidError("sonarqube: endpoint is required", nil)
	}

	s.config = config

	health := s.HealthCheck(ctx)
	if !health.IsHealthy {
		return domain.NewConfigInvalidError("sonarqube: health probe failed: "+health.ErrorMessage, nil)
	}
	s.initialized = true
	return nil
}

// SupportedLanguages returns the analyzable language ids. Pure, no I/O.
func (s *SonarQube) SupportedLanguages() []string {
	return SonarQubeTemplate().SupportedLanguages
}

// SupportedFeatures returns the capability tags. Pure, no I/O.
func (s *SonarQube) SupportedFeatures() []string {
	return SonarQubeTemplate().SupportedFeatures
}

// AnalyzeFile sends one file for analysis under the configured timeout and
// retry budget.
func (s *SonarQube) AnalyzeFile(ctx context.Context, file domain.FileInput, opts domain.AnalysisOptions) (*domain.ProviderResult, error) {
	started := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.config.TimeoutDuration()
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
	err = retryTransient(callCtx, s.config.Retries(), func() error {
		var reqErr error
		body, reqErr = doJSON(callCtx, s.client, "POST", s.endpoint("/api/analysis"), s.headers(), payload)
		return reqErr
	})
	if err != nil {
		return nil, err
	}

	var vendor sonarAnalysisResponse
	if err := json.Unmarshal(body, &vendor); err != nil {
		return nil, domain.NewProviderUnavailableError("sonarqube: malformed analysis response", err)
	}

	issues := make([]domain.Issue, 0, len(vendor.Issues))
	for _, vi := range vendor.Issues {
		issues = append(issues, s.mapIssue(file.Path, vi))
	}

	analysisID := vendor.AnalysisID
	if analysisID == "" {
		analysisID = uuid.NewString()
	}

	return &domain.ProviderResult{
		ProviderID:      SonarQubeID,
		ProviderVersion: vendor.Version,
		AnalysisID:      analysisID,
		Timestamp:       time.Now(),
		Duration:        time.Since(started),
		Issues:          issues,
		Statistics:      metrics.StatisticsFromIssues(issues),
		RawPayload:      string(body),
	}, nil
}

// AnalyzeBatch analyzes files one by one; a failed file goes into the
// failure list instead of aborting the batch.
func (s *SonarQube) AnalyzeBatch(ctx context.Context, files []domain.FileInput, opts domain.AnalysisOptions) (*domain.BatchResult, error) {
	batch := &domain.BatchResult{
		Processed: make([]*domain.ProviderResult, 0, len(files)),
		Failed:    make([]domain.FileError, 0),
	}
	for _, file := range files {
		result, err := s.AnalyzeFile(ctx, file, opts)
		if err != nil {
			batch.Failed = append(batch.Failed, domain.FileError{Path: file.Path, Err: err})
			continue
		}
		batch.Processed = append(batch.Processed, result)
	}
	return batch, nil
}

// HealthCheck probes the system status endpoint. It never returns an error;
// every failure mode is reported inside the status record.
func (s *SonarQube) HealthCheck(ctx context.Context) domain.HealthStatus {
	started := time.Now()
	status := domain.HealthStatus{LastChecked: started}

	if s.config.Endpoint == "" {
		status.ErrorMessage = "no endpoint configured"
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.config.TimeoutDuration())
	defer cancel()

	_, err := doJSON(probeCtx, s.client, "GET", s.endpoint("/api/system/status"), s.headers(), nil)
	status.ResponseTime = time.Since(started)
	if err != nil {
		status.ErrorMessage = unwrapClassification(err).Error()
		return status
	}
	status.IsHealthy = true
	return status
}

func (s *SonarQube) mapIssue(filePath string, vi sonarIssue) domain.Issue {
	severity, ok := sonarSeverities[strings.ToUpper(vi.Severity)]
	if !ok {
		severity = domain.DefaultSeverity
	}
	category, ok := sonarTypes[strings.ToUpper(vi.Type)]
	if !ok {
		category = domain.DefaultCategory
	}

	line := vi.Line
	if line < 1 {
		line = 1
	}

	return domain.Issue{
		Category: category,
		Severity: severity,
		File:     filePath,
		Line:     line,
		Column:   vi.Column,
		Message:  vi.Message,
		RuleID:   vi.Rule,
		Source:   SonarQubeID,
	}
}

func (s *SonarQube) endpoint(path string) string {
	return strings.TrimRight(s.config.Endpoint, "/") + path
}

func (s *SonarQube) headers() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + s.config.APIKey,
	}
	for k, v := range s.config.CustomHeaders {
		headers[k] = v
	}
	return headers
}
