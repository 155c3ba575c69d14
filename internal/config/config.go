package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default review settings
const (
	// DefaultMinSeverity reports everything
	DefaultMinSeverity = "info"

	// DefaultAIVendor is used when no vendor is configured
	DefaultAIVendor = "anthropic"

	// DefaultAITimeoutSeconds bounds one completion call
	DefaultAITimeoutSeconds = 120

	// DefaultMaxGoroutines bounds file-level parallelism
	DefaultMaxGoroutines = 4

	// DefaultTimeoutSeconds bounds a whole review run
	DefaultTimeoutSeconds = 300
)

// Config represents the main configuration structure
type Config struct {
	// Review holds review pipeline configuration
	Review ReviewConfig `json:"review" mapstructure:"review" yaml:"review"`

	// AI holds completion backend configuration
	AI AIConfig `json:"ai" mapstructure:"ai" yaml:"ai"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Performance holds concurrency and timeout configuration
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// ReviewConfig holds configuration for the review pipeline
type ReviewConfig struct {
	// IncludeExtensions restricts which files a directory walk collects;
	// empty means the built-in default set
	IncludeExtensions []string `json:"include_extensions" mapstructure:"include_extensions" yaml:"include_extensions"`

	// MinSeverity drops issues below this level: info, low, medium, high, critical
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// Categories keeps only these categories; empty keeps all
	Categories []string `json:"categories" mapstructure:"categories" yaml:"categories"`

	// EnableThirdParty turns the provider fan-out on
	EnableThirdParty bool `json:"enable_third_party" mapstructure:"enable_third_party" yaml:"enable_third_party"`

	// Providers restricts fan-out to these provider ids; empty means all enabled
	Providers []string `json:"providers" mapstructure:"providers" yaml:"providers"`
}

// AIConfig holds configuration for the completion backend
type AIConfig struct {
	// Vendor selects the backend: anthropic, openai, ollama
	Vendor string `json:"vendor" mapstructure:"vendor" yaml:"vendor"`

	// Model overrides the vendor's default model
	Model string `json:"model" mapstructure:"model" yaml:"model"`

	// BaseURL overrides the vendor's default endpoint
	BaseURL string `json:"base_url" mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSeconds bounds one completion call
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether to show detailed issue descriptions
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`
}

// PerformanceConfig holds concurrency and timeout configuration
type PerformanceConfig struct {
	// MaxGoroutines bounds file-level parallelism (0 = default)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole review run (0 = default)
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			IncludeExtensions: []string{},
			MinSeverity:       DefaultMinSeverity,
			Categories:        []string{},
			EnableThirdParty:  false,
			Providers:         []string{},
		},
		AI: AIConfig{
			Vendor:         DefaultAIVendor,
			TimeoutSeconds: DefaultAITimeoutSeconds,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// If no config path is given one is discovered relative to the target.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per call avoids cross-call state
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the path being reviewed; the search walks from there upward.
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"crev.yaml",
		"crev.yml",
		".crev.yaml",
		".crev.yml",
		"crev.json",
		".crev.json",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "crev"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "crev")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("CREV_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validSeverities := map[string]bool{
		"critical": true,
		"high":     true,
		"medium":   true,
		"low":      true,
		"info":     true,
	}
	if !validSeverities[c.Review.MinSeverity] {
		return fmt.Errorf("invalid review.min_severity '%s', must be one of: critical, high, medium, low, info", c.Review.MinSeverity)
	}

	validVendors := map[string]bool{
		"anthropic": true,
		"openai":    true,
		"ollama":    true,
	}
	if !validVendors[c.AI.Vendor] {
		return fmt.Errorf("invalid ai.vendor '%s', must be one of: anthropic, openai, ollama", c.AI.Vendor)
	}

	if c.AI.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be >= 0, got %d", c.AI.TimeoutSeconds)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("review", config.Review)
	v.Set("ai", config.AI)
	v.Set("output", config.Output)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
