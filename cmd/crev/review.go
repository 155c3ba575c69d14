package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ludo-technologies/crev/app"
	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/config"
	"github.com/ludo-technologies/crev/internal/llm"
	"github.com/ludo-technologies/crev/internal/providers"
	"github.com/ludo-technologies/crev/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReviewExitError carries a process exit code past cobra
type ReviewExitError struct {
	Code    int
	Message string
}

func (e *ReviewExitError) Error() string {
	return e.Message
}

var (
	reviewFormat      string
	reviewJSON        bool
	reviewOutputPath  string
	reviewConfigPath  string
	reviewMinSeverity string
	reviewCategories  []string
	reviewExtensions  []string
	reviewThirdParty  bool
	reviewProviders   []string
	reviewDetailed    bool
	reviewFailOn      string
	reviewConcurrency int
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <path>",
		Short: "Review a file or directory",
		Long: `Review a file or directory. Heuristic rules and AI analysis always run;
third-party providers join the run when enabled.

Exit codes:
  0 - Review completed
  1 - Review completed and --fail-on threshold was hit
  2 - Review failed (target not found, no completion backend, bad flags)

Examples:
  # Review a directory
  crev review src/

  # Only security and bug findings of high severity or worse
  crev review --min-severity high --category security,bug src/

  # Fan out to configured providers, fail the build on critical issues
  crev review --third-party --fail-on critical src/

  # JSON output for machine parsing
  crev review --json src/`,
		RunE:          runReview,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&reviewFormat, "format", "f", "",
		"Output format: text, json, yaml")
	cmd.Flags().BoolVar(&reviewJSON, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().StringVarP(&reviewOutputPath, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&reviewConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&reviewMinSeverity, "min-severity", "",
		"Drop issues below this severity: critical, high, medium, low, info")
	cmd.Flags().StringSliceVar(&reviewCategories, "category", nil,
		"Keep only these categories (comma-separated)")
	cmd.Flags().StringSliceVar(&reviewExtensions, "ext", nil,
		"Restrict the walk to these extensions (comma-separated)")
	cmd.Flags().BoolVar(&reviewThirdParty, "third-party", false,
		"Fan out to enabled third-party providers")
	cmd.Flags().StringSliceVar(&reviewProviders, "providers", nil,
		"Restrict fan-out to these provider ids")
	cmd.Flags().BoolVar(&reviewDetailed, "detailed", false,
		"Request richer issue descriptions")
	cmd.Flags().StringVar(&reviewFailOn, "fail-on", "",
		"Exit 1 when an issue at or above this severity remains after filtering")
	cmd.Flags().IntVar(&reviewConcurrency, "concurrency", 0,
		"Number of files reviewed in parallel (0 = config default)")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &ReviewExitError{Code: 2, Message: "exactly one target path is required"}
	}
	target := args[0]

	failOn, err := parseFailOn(reviewFailOn)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}

	cfg, err := config.LoadConfigWithTarget(reviewConfigPath, target)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	req, err := buildReviewRequest(target)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}

	if reviewOutputPath != "" {
		file, err := os.Create(reviewOutputPath)
		if err != nil {
			return &ReviewExitError{Code: 2, Message: fmt.Sprintf("cannot create output file: %v", err)}
		}
		defer file.Close()
		req.OutputWriter = file
	}

	client, err := llm.New(cfg.AI.Vendor, llm.Options{
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return &ReviewExitError{Code: 2, Message: fmt.Sprintf("completion backend unavailable: %v", err)}
	}

	registry := buildRegistry()

	engine := service.NewReviewEngine(registry, client, app.NewFileHelper(), logger)
	interactive := req.OutputFormat == domain.OutputFormatText && reviewOutputPath == ""
	pm := service.NewProgressManager(interactive)
	defer pm.Close()
	engine.SetProgressManager(pm)

	engine.SetExecutor(service.NewParallelExecutorFromConfig(&cfg.Performance))
	if reviewConcurrency > 0 {
		engine.SetMaxConcurrency(reviewConcurrency)
	}

	ctx := context.Background()

	uc := app.NewReviewUseCase(engine, service.NewOutputFormatter())
	result, err := uc.Execute(ctx, *req)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}

	if failOn != "" {
		for _, sev := range domain.AllSeverities() {
			if domain.MeetsSeverity(sev, failOn) && result.Summary.Count(sev) > 0 {
				return &ReviewExitError{Code: 1, Message: ""}
			}
		}
	}

	return nil
}

// parseFailOn resolves the --fail-on flag to a canonical severity. Only
// the canonical names are accepted; an unknown value is a usage error,
// not a silent fallback to the default severity.
func parseFailOn(value string) (domain.IssueSeverity, error) {
	if value == "" {
		return "", nil
	}
	sev := domain.IssueSeverity(strings.ToLower(value))
	if domain.SeverityRank(sev) == 0 {
		return "", fmt.Errorf("unknown --fail-on severity %q (use critical, high, medium, low or info)", value)
	}
	return sev, nil
}

// buildReviewRequest merges file configuration with explicit flags
func buildReviewRequest(target string) (*domain.ReviewRequest, error) {
	loader := service.NewConfigurationLoader()

	base := loader.LoadDefaultConfig(target)
	if reviewConfigPath != "" {
		loaded, err := loader.LoadConfig(reviewConfigPath)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	override := &domain.ReviewRequest{
		TargetPath:        target,
		IncludeExtensions: reviewExtensions,
		EnableThirdParty:  reviewThirdParty,
		ProviderIDs:       reviewProviders,
		Detailed:          reviewDetailed,
	}

	if reviewMinSeverity != "" {
		override.SeverityFilter = domain.MapSeverity(reviewMinSeverity)
	}

	for _, cat := range reviewCategories {
		override.CategoryFilter = append(override.CategoryFilter, domain.MapCategory(cat))
	}

	format := reviewFormat
	if reviewJSON {
		format = "json"
	}
	if format != "" {
		if format != "text" && format != "json" && format != "yaml" {
			return nil, fmt.Errorf("unsupported output format: %s", format)
		}
		override.OutputFormat = domain.OutputFormat(format)
	}

	return loader.MergeConfig(base, override), nil
}

// buildRegistry wires the built-in providers and persisted configuration
func buildRegistry() *service.ProviderRegistry {
	store := service.NewFileSettingsStore(service.DefaultSettingsPath())
	registry := service.NewProviderRegistry(store, logger)
	for _, builtin := range providers.Builtin() {
		if err := registry.Register(builtin.Template, builtin.Factory); err != nil {
			logger.Warn("provider registration failed", zap.Error(err))
		}
	}
	return registry
}
