package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ludo-technologies/crev/domain"
)

func decodeBody(t *testing.T, r *http.Request, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Fatalf("Decoding request body: %v", err)
	}
}

func ccServer(t *testing.T, handler http.HandlerFunc) *CodeClimate {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &CodeClimate{
		client: server.Client(),
		config: domain.ProviderConfig{
			APIKey:        "cc-token-123456",
			Endpoint:      server.URL,
			Timeout:       5000,
			RetryAttempts: 0,
		},
	}
}

func TestCodeClimate_AnalyzeFile_MapsVocabulary(t *testing.T) {
	adapter := ccServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cc-run-1",
			"engine_version": "0.85.0",
			"issues": [
				{"check_name": "sql-injection", "severity": "blocker", "categories": ["Security"], "description": "tainted query", "location": {"lines": {"begin": 12, "end": 14}}},
				{"check_name": "method-length", "severity": "minor", "categories": ["Complexity"], "description": "long method", "location": {"lines": {"begin": 30, "end": 90}}},
				{"check_name": "weird", "severity": "galactic", "categories": ["Unheard Of"], "description": "??", "location": {"lines": {"begin": 0}}}
			]
		}`))
	})

	result, err := adapter.AnalyzeFile(context.Background(), domain.FileInput{Path: "m.rb", Content: "x", Language: "ruby"}, domain.AnalysisOptions{})
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if len(result.Issues) != 3 {
		t.Fatalf("Expected 3 issues, got %d", len(result.Issues))
	}

	first := result.Issues[0]
	if first.Severity != domain.SeverityCritical || first.Category != domain.CategorySecurity {
		t.Errorf("blocker/Security mapped to %s/%s", first.Severity, first.Category)
	}
	if first.Line != 12 || first.EndLine != 14 {
		t.Errorf("Unexpected location %d-%d", first.Line, first.EndLine)
	}

	second := result.Issues[1]
	if second.Severity != domain.SeverityLow || second.Category != domain.CategoryMaintainability {
		t.Errorf("minor/Complexity mapped to %s/%s", second.Severity, second.Category)
	}

	third := result.Issues[2]
	if third.Severity != domain.DefaultSeverity || third.Category != domain.DefaultCategory {
		t.Errorf("Unknown vocabulary mapped to %s/%s, want defaults", third.Severity, third.Category)
	}
}

func TestCodeClimate_CategoryTableIsTotal(t *testing.T) {
	documented := []string{"bug risk", "security", "performance", "style", "clarity", "complexity", "duplication"}
	for _, v := range documented {
		if _, ok := ccCategories[v]; !ok {
			t.Errorf("Documented category %q has no mapping entry", v)
		}
	}
	documentedSeverities := []string{"blocker", "critical", "major", "minor", "info"}
	for _, v := range documentedSeverities {
		if _, ok := ccSeverities[v]; !ok {
			t.Errorf("Documented severity %q has no mapping entry", v)
		}
	}
}

func TestCodeClimate_HealthCheck(t *testing.T) {
	adapter := ccServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ping" {
			t.Errorf("Unexpected probe path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	status := adapter.HealthCheck(context.Background())
	if !status.IsHealthy {
		t.Errorf("Expected healthy status: %+v", status)
	}
	if status.ResponseTime <= 0 {
		t.Error("Expected a measured response time")
	}
}

func TestCodeClimate_Initialize_RequiresEndpoint(t *testing.T) {
	adapter := &CodeClimate{client: http.DefaultClient}
	err := adapter.Initialize(context.Background(), domain.ProviderConfig{APIKey: "cc-token-123456"})
	if err == nil {
		t.Fatal("Expected config error without endpoint")
	}
	if domain.ErrorCode(err) != domain.ErrConfigInvalid {
		t.Errorf("Expected %s, got %s", domain.ErrConfigInvalid, domain.ErrorCode(err))
	}
}

func TestBuiltin_RegistrationOrder(t *testing.T) {
	builtin := Builtin()
	if len(builtin) != 2 {
		t.Fatalf("Expected 2 builtin providers, got %d", len(builtin))
	}
	if builtin[0].Template.ID != SonarQubeID || builtin[1].Template.ID != CodeClimateID {
		t.Errorf("Unexpected registration order: %s, %s", builtin[0].Template.ID, builtin[1].Template.ID)
	}
	for _, b := range builtin {
		p := b.Factory()
		if p.ID() != b.Template.ID {
			t.Errorf("Factory id %s does not match template id %s", p.ID(), b.Template.ID)
		}
	}
}
