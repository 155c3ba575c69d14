package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/crev/domain"
)

func TestLoadConfigNonExistent(t *testing.T) {
	loader := NewConfigurationLoader()

	_, err := loader.LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if code := domain.ErrorCode(err); code != domain.ErrConfigInvalid {
		t.Errorf("expected %s, got %s", domain.ErrConfigInvalid, code)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crev.yaml")
	content := `review:
  min_severity: high
  categories:
    - security
    - bug
  enable_third_party: true
output:
  format: json
  show_details: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewConfigurationLoader()
	req, err := loader.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if req.SeverityFilter != domain.SeverityHigh {
		t.Errorf("expected severity high, got %s", req.SeverityFilter)
	}
	if len(req.CategoryFilter) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(req.CategoryFilter))
	}
	if req.CategoryFilter[0] != domain.CategorySecurity || req.CategoryFilter[1] != domain.CategoryBug {
		t.Errorf("unexpected categories: %v", req.CategoryFilter)
	}
	if !req.EnableThirdParty {
		t.Error("expected third-party analysis enabled")
	}
	if !req.Detailed {
		t.Error("expected detailed output")
	}
	if req.OutputFormat != domain.OutputFormatJSON {
		t.Errorf("expected json format, got %s", req.OutputFormat)
	}
}

func TestLoadDefaultConfigFallsBack(t *testing.T) {
	loader := NewConfigurationLoader()

	// A target with no config file anywhere near it gets the defaults
	req := loader.LoadDefaultConfig(t.TempDir())
	if req == nil {
		t.Fatal("LoadDefaultConfig must never return nil")
	}
	if req.SeverityFilter != domain.SeverityInfo {
		t.Errorf("expected default severity info, got %s", req.SeverityFilter)
	}
}

func TestMergeConfigOverrideWins(t *testing.T) {
	loader := NewConfigurationLoader()

	base := &domain.ReviewRequest{
		TargetPath:     "base/",
		SeverityFilter: domain.SeverityInfo,
		CategoryFilter: []domain.IssueCategory{domain.CategoryQuality},
		OutputFormat:   domain.OutputFormatText,
	}
	override := &domain.ReviewRequest{
		TargetPath:       "cli/",
		SeverityFilter:   domain.SeverityHigh,
		EnableThirdParty: true,
		ProviderIDs:      []string{"sonarqube"},
	}

	merged := loader.MergeConfig(base, override)

	if merged.TargetPath != "cli/" {
		t.Errorf("target should come from the override, got %s", merged.TargetPath)
	}
	if merged.SeverityFilter != domain.SeverityHigh {
		t.Errorf("severity should come from the override, got %s", merged.SeverityFilter)
	}
	if !merged.EnableThirdParty {
		t.Error("third-party flag should come from the override")
	}
	if len(merged.ProviderIDs) != 1 || merged.ProviderIDs[0] != "sonarqube" {
		t.Errorf("provider ids should come from the override, got %v", merged.ProviderIDs)
	}

	// Zero-valued override fields keep the base values
	if len(merged.CategoryFilter) != 1 || merged.CategoryFilter[0] != domain.CategoryQuality {
		t.Errorf("categories should keep the base value, got %v", merged.CategoryFilter)
	}
	if merged.OutputFormat != domain.OutputFormatText {
		t.Errorf("format should keep the base value, got %s", merged.OutputFormat)
	}

	// The inputs stay untouched
	if base.TargetPath != "base/" || base.SeverityFilter != domain.SeverityInfo {
		t.Error("MergeConfig must not mutate its inputs")
	}
}

func TestConvertMapsUnknownLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crev.yaml")
	content := `review:
  min_severity: info
  categories:
    - vulnerability
    - code_smell
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewConfigurationLoader()
	req, err := loader.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Alias labels normalize to the canonical taxonomy
	if req.CategoryFilter[0] != domain.CategorySecurity {
		t.Errorf("vulnerability should map to security, got %s", req.CategoryFilter[0])
	}
	if req.CategoryFilter[1] != domain.CategoryMaintainability {
		t.Errorf("code_smell should map to maintainability, got %s", req.CategoryFilter[1])
	}
}
