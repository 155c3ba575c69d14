package service

import (
	"os"
	"path/filepath"

	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/config"
)

// ConfigurationLoaderImpl translates file configuration into review requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.ReviewRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigInvalidError("failed to load configuration file", err)
	}

	return c.convertToReviewRequest(cfg), nil
}

// LoadDefaultConfig loads the default configuration, discovering a config
// file near the target when one exists
func (c *ConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *domain.ReviewRequest {
	cfg, err := config.LoadConfigWithTarget("", targetPath)
	if err == nil {
		return c.convertToReviewRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	cfg = config.DefaultConfig()
	return c.convertToReviewRequest(cfg)
}

// FindDefaultConfigFile searches for a default configuration file
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile() string {
	configFiles := []string{
		"crev.yaml",
		"crev.yml",
		".crev.yaml",
		".crev.yml",
		"crev.json",
		".crev.json",
	}

	for _, file := range configFiles {
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, file := range configFiles {
			configPath := filepath.Join(currentDir, file)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// MergeConfig merges CLI flags with configuration file values. The
// override wins wherever it carries a non-zero value.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.ReviewRequest, override *domain.ReviewRequest) *domain.ReviewRequest {
	merged := *base

	// The target always comes from command arguments
	if override.TargetPath != "" {
		merged.TargetPath = override.TargetPath
	}

	if override.AnalysisType != "" {
		merged.AnalysisType = override.AnalysisType
	}

	if len(override.IncludeExtensions) > 0 {
		merged.IncludeExtensions = override.IncludeExtensions
	}

	if override.SeverityFilter != "" {
		merged.SeverityFilter = override.SeverityFilter
	}

	if len(override.CategoryFilter) > 0 {
		merged.CategoryFilter = override.CategoryFilter
	}

	if override.EnableThirdParty {
		merged.EnableThirdParty = true
	}

	if len(override.ProviderIDs) > 0 {
		merged.ProviderIDs = override.ProviderIDs
	}

	if override.Detailed {
		merged.Detailed = true
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	return &merged
}

// convertToReviewRequest converts a Config to a ReviewRequest
func (c *ConfigurationLoaderImpl) convertToReviewRequest(cfg *config.Config) *domain.ReviewRequest {
	categories := make([]domain.IssueCategory, 0, len(cfg.Review.Categories))
	for _, cat := range cfg.Review.Categories {
		categories = append(categories, domain.MapCategory(cat))
	}

	return &domain.ReviewRequest{
		IncludeExtensions: cfg.Review.IncludeExtensions,
		SeverityFilter:    domain.MapSeverity(cfg.Review.MinSeverity),
		CategoryFilter:    categories,
		EnableThirdParty:  cfg.Review.EnableThirdParty,
		ProviderIDs:       cfg.Review.Providers,
		Detailed:          cfg.Output.ShowDetails,
		OutputFormat:      domain.OutputFormat(cfg.Output.Format),
	}
}
