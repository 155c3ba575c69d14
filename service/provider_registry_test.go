package service

import (
	"context"
	"testing"

	"github.com/ludo-technologies/crev/domain"
	"go.uber.org/zap"
)

func testTemplate(id string) domain.ProviderTemplate {
	return domain.ProviderTemplate{
		ID:             id,
		Name:           id,
		RequiredFields: []string{"api_key", "endpoint"},
	}
}

func validConfig() domain.ProviderConfig {
	return domain.ProviderConfig{
		APIKey:   "test-key-12345",
		Endpoint: "https://api.example.com",
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())

	ids := []string{"zeta", "alpha", "mid"}
	for _, id := range ids {
		p := &stubProvider{id: id}
		if err := registry.Register(testTemplate(id), func() domain.Provider { return p }); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	templates := registry.ListAvailable()
	if len(templates) != len(ids) {
		t.Fatalf("expected %d templates, got %d", len(ids), len(templates))
	}
	for i, tpl := range templates {
		if tpl.ID != ids[i] {
			t.Errorf("position %d: got %s, want %s", i, tpl.ID, ids[i])
		}
	}
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	p := &stubProvider{id: "dup"}
	factory := func() domain.Provider { return p }

	if err := registry.Register(testTemplate("dup"), factory); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register(testTemplate("dup"), factory); err == nil {
		t.Error("second registration of the same id should fail")
	}
}

func TestRegistrySetConfigInvalidPersistsNothing(t *testing.T) {
	store := NewMemorySettingsStore()
	registry := NewProviderRegistry(store, zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	bad := domain.ProviderConfig{
		APIKey:   "valid-key-12345",
		Endpoint: "not a url",
	}
	err := registry.SetConfig("alpha", bad)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(*domain.ValidationError)
	if !ok {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "endpoint" {
		t.Errorf("expected one failure on endpoint, got %+v", verr.Fields)
	}

	// Nothing persisted, not even the valid field
	if _, ok := registry.GetConfig("alpha"); ok {
		t.Error("config should not be stored on validation failure")
	}
	if blob, _ := store.Get("configuredProviders"); blob != "" {
		t.Errorf("nothing should be persisted, got %q", blob)
	}
}

func TestRegistrySetConfigCollectsAllFieldErrors(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	bad := domain.ProviderConfig{
		APIKey:   "short",
		Endpoint: "ftp://example.com",
		Timeout:  50,
	}
	err := registry.SetConfig("alpha", bad)
	verr, ok := err.(*domain.ValidationError)
	if !ok {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %d: %+v", len(verr.Fields), verr.Fields)
	}
}

func TestRegistrySetConfigRejectsOutOfRangeRetries(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.RetryAttempts = -5
	err := registry.SetConfig("alpha", cfg)
	verr, ok := err.(*domain.ValidationError)
	if !ok {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "retry_attempts" {
		t.Errorf("expected a retry_attempts failure, got %+v", verr.Fields)
	}

	// Only the exact -1 sentinel means unset
	cfg.RetryAttempts = -1
	if err := registry.SetConfig("alpha", cfg); err != nil {
		t.Errorf("retries -1 should pass validation, got %v", err)
	}
}

func TestRegistryEnableRequiresConfiguration(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	err := registry.Enable("alpha")
	if err == nil {
		t.Fatal("enabling an unconfigured provider should fail")
	}
	if code := domain.ErrorCode(err); code != domain.ErrNotConfigured {
		t.Errorf("expected %s, got %s", domain.ErrNotConfigured, code)
	}

	if err := registry.SetConfig("alpha", validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := registry.Enable("alpha"); err != nil {
		t.Errorf("enabling a configured provider failed: %v", err)
	}
	if !registry.IsEnabled("alpha") {
		t.Error("provider should be enabled")
	}

	registry.Disable("alpha")
	if registry.IsEnabled("alpha") {
		t.Error("provider should be disabled")
	}
}

func TestRegistryEnabledProvidersFollowRegistrationOrder(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	for _, id := range []string{"c", "a", "b"} {
		p := &stubProvider{id: id}
		if err := registry.Register(testTemplate(id), func() domain.Provider { return p }); err != nil {
			t.Fatal(err)
		}
		if err := registry.SetConfig(id, validConfig()); err != nil {
			t.Fatal(err)
		}
	}

	// Enable in a different order than registration
	for _, id := range []string{"b", "c"} {
		if err := registry.Enable(id); err != nil {
			t.Fatal(err)
		}
	}

	got := registry.EnabledProviders()
	want := []string{"c", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestRegistryPersistenceRoundTrip(t *testing.T) {
	store := NewMemorySettingsStore()

	first := NewProviderRegistry(store, zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := first.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}
	if err := first.SetConfig("alpha", validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := first.Enable("alpha"); err != nil {
		t.Fatal(err)
	}

	// A fresh registry over the same store sees the persisted state
	second := NewProviderRegistry(store, zap.NewNop())
	if err := second.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	cfg, ok := second.GetConfig("alpha")
	if !ok {
		t.Fatal("persisted config not restored")
	}
	if cfg.APIKey != "test-key-12345" || cfg.Endpoint != "https://api.example.com" {
		t.Errorf("restored config does not match: %+v", cfg)
	}
	if !second.IsEnabled("alpha") {
		t.Error("persisted enabled state not restored")
	}
}

func TestRegistryIgnoresMalformedPersistedState(t *testing.T) {
	store := NewMemorySettingsStore()
	if err := store.Set("configuredProviders", "{not json"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("enabledProviders", "also not json"); err != nil {
		t.Fatal(err)
	}

	registry := NewProviderRegistry(store, zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	if _, ok := registry.GetConfig("alpha"); ok {
		t.Error("malformed persisted config should be treated as absent")
	}
	if registry.IsEnabled("alpha") {
		t.Error("malformed enabled set should be treated as empty")
	}

	// The registry stays usable
	if err := registry.SetConfig("alpha", validConfig()); err != nil {
		t.Errorf("registry unusable after malformed state: %v", err)
	}
}

func TestRegistryInstantiate(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	p := &stubProvider{id: "alpha"}
	if err := registry.Register(testTemplate("alpha"), func() domain.Provider { return p }); err != nil {
		t.Fatal(err)
	}

	if _, err := registry.Instantiate(context.Background(), "alpha"); err == nil {
		t.Error("instantiating an unconfigured provider should fail")
	}
	if _, err := registry.Instantiate(context.Background(), "ghost"); err == nil {
		t.Error("instantiating an unknown provider should fail")
	}

	if err := registry.SetConfig("alpha", validConfig()); err != nil {
		t.Fatal(err)
	}
	provider, err := registry.Instantiate(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if provider.ID() != "alpha" {
		t.Errorf("expected alpha, got %s", provider.ID())
	}
}

func TestRegistryTestAllConnections(t *testing.T) {
	registry := NewProviderRegistry(NewMemorySettingsStore(), zap.NewNop())
	healthy := &stubProvider{id: "up"}
	broken := &stubProvider{id: "down", callErr: context.DeadlineExceeded}
	for _, p := range []*stubProvider{healthy, broken} {
		if err := registry.Register(testTemplate(p.id), func() domain.Provider { return p }); err != nil {
			t.Fatal(err)
		}
		if err := registry.SetConfig(p.id, validConfig()); err != nil {
			t.Fatal(err)
		}
	}

	statuses, err := registry.TestAllConnections(context.Background(), NewParallelExecutor())
	if err == nil {
		t.Error("expected an aggregate error because one probe is unhealthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected statuses for both providers, got %d", len(statuses))
	}
	if !statuses["up"].IsHealthy {
		t.Error("healthy provider reported unhealthy")
	}
	if statuses["down"].IsHealthy {
		t.Error("broken provider reported healthy")
	}
}
