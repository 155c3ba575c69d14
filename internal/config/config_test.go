package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	// Verify review defaults
	if config.Review.MinSeverity != DefaultMinSeverity {
		t.Errorf("Expected MinSeverity %s, got %s", DefaultMinSeverity, config.Review.MinSeverity)
	}
	if config.Review.EnableThirdParty {
		t.Error("EnableThirdParty should be false by default")
	}

	// Verify AI defaults
	if config.AI.Vendor != DefaultAIVendor {
		t.Errorf("Expected Vendor %s, got %s", DefaultAIVendor, config.AI.Vendor)
	}
	if config.AI.TimeoutSeconds != DefaultAITimeoutSeconds {
		t.Errorf("Expected TimeoutSeconds %d, got %d", DefaultAITimeoutSeconds, config.AI.TimeoutSeconds)
	}

	// Verify output defaults
	if config.Output.Format != "text" {
		t.Errorf("Expected Format 'text', got '%s'", config.Output.Format)
	}

	// Verify performance defaults
	if config.Performance.MaxGoroutines != DefaultMaxGoroutines {
		t.Errorf("Expected MaxGoroutines %d, got %d", DefaultMaxGoroutines, config.Performance.MaxGoroutines)
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	config := DefaultConfig()

	err := config.Validate()
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidMinSeverity(t *testing.T) {
	config := DefaultConfig()
	config.Review.MinSeverity = "fatal"

	err := config.Validate()
	if err == nil {
		t.Error("Expected error for unknown min_severity")
	}
}

func TestConfig_Validate_InvalidVendor(t *testing.T) {
	config := DefaultConfig()
	config.AI.Vendor = "bard"

	err := config.Validate()
	if err == nil {
		t.Error("Expected error for unknown ai.vendor")
	}
}

func TestConfig_Validate_InvalidFormat(t *testing.T) {
	config := DefaultConfig()
	config.Output.Format = "xml"

	err := config.Validate()
	if err == nil {
		t.Error("Expected error for unknown output.format")
	}
}

func TestConfig_Validate_NegativeGoroutines(t *testing.T) {
	config := DefaultConfig()
	config.Performance.MaxGoroutines = -1

	err := config.Validate()
	if err == nil {
		t.Error("Expected error for negative max_goroutines")
	}
}

func TestLoadConfig_MissingPathReturnsDefault(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with empty path should not fail: %v", err)
	}
	if config.Review.MinSeverity != DefaultMinSeverity {
		t.Errorf("Expected default MinSeverity, got %s", config.Review.MinSeverity)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crev.yaml")

	content := `review:
  min_severity: high
ai:
  vendor: ollama
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Review.MinSeverity != "high" {
		t.Errorf("Expected MinSeverity 'high', got '%s'", config.Review.MinSeverity)
	}
	if config.AI.Vendor != "ollama" {
		t.Errorf("Expected Vendor 'ollama', got '%s'", config.AI.Vendor)
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected Format 'json', got '%s'", config.Output.Format)
	}
	// Untouched sections keep defaults
	if config.Performance.MaxGoroutines != DefaultMaxGoroutines {
		t.Errorf("Expected default MaxGoroutines, got %d", config.Performance.MaxGoroutines)
	}
}

func TestLoadConfig_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crev.yaml")

	content := `review:
  min_severity: impossible
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid config values")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crev.yaml")

	config := DefaultConfig()
	config.Review.MinSeverity = "low"
	config.AI.Vendor = "openai"

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Review.MinSeverity != "low" {
		t.Errorf("Expected MinSeverity 'low', got '%s'", loaded.Review.MinSeverity)
	}
	if loaded.AI.Vendor != "openai" {
		t.Errorf("Expected Vendor 'openai', got '%s'", loaded.AI.Vendor)
	}
}

func TestFindDefaultConfig_TargetUpwardSearch(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(root, "crev.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  format: text\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found := findDefaultConfig(nested)
	if found != configPath {
		t.Errorf("Expected %s, got %s", configPath, found)
	}
}

func TestGetFullConfigTemplate(t *testing.T) {
	tmpl := GetFullConfigTemplate("ollama", StrictnessStrict)

	if !strings.Contains(tmpl, "vendor: ollama") {
		t.Error("Template should contain the selected vendor")
	}
	if !strings.Contains(tmpl, "min_severity: info") {
		t.Error("Strict preset should report everything")
	}
}
