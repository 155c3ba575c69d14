package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ludo-technologies/crev/domain"
	"go.uber.org/zap"
)

// Settings store keys used by the registry. The values are opaque JSON
// blobs; the strict schema lives on this side of the boundary.
const (
	configuredProvidersKey = "configuredProviders"
	enabledProvidersKey    = "enabledProviders"
)

// ProviderRegistry holds the configured providers for the process lifetime.
// It is the only component that mutates ProviderConfig values; mutation is
// serialized behind a mutex while reads may run concurrently.
type ProviderRegistry struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	store     domain.SettingsStore
	validator *ConfigValidator

	order     []string
	templates map[string]domain.ProviderTemplate
	factories map[string]domain.ProviderFactory
	configs   map[string]domain.ProviderConfig
	enabled   map[string]bool
}

// NewProviderRegistry creates an empty registry backed by the given store.
// Persisted configuration is loaded eagerly; malformed persisted data is
// treated as absent, not as an error.
func NewProviderRegistry(store domain.SettingsStore, logger *zap.Logger) *ProviderRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ProviderRegistry{
		logger:    logger,
		store:     store,
		validator: NewConfigValidator(),
		templates: make(map[string]domain.ProviderTemplate),
		factories: make(map[string]domain.ProviderFactory),
		configs:   make(map[string]domain.ProviderConfig),
		enabled:   make(map[string]bool),
	}
	r.load()
	return r
}

// Register adds a provider type to the registry. Registration order is
// preserved; it is the canonical provider ordering for fan-out and merge.
func (r *ProviderRegistry) Register(template domain.ProviderTemplate, factory domain.ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[template.ID]; exists {
		return fmt.Errorf("provider %q is already registered", template.ID)
	}
	r.order = append(r.order, template.ID)
	r.templates[template.ID] = template
	r.factories[template.ID] = factory
	return nil
}

// ListAvailable returns the registered templates in registration order
func (r *ProviderRegistry) ListAvailable() []domain.ProviderTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]domain.ProviderTemplate, 0, len(r.order))
	for _, id := range r.order {
		templates = append(templates, r.templates[id])
	}
	return templates
}

// SetConfig validates and stores the configuration for one provider. On
// validation failure nothing is persisted, not even valid fields.
func (r *ProviderRegistry) SetConfig(providerID string, config domain.ProviderConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, ok := r.templates[providerID]
	if !ok {
		return fmt.Errorf("unknown provider: %s", providerID)
	}

	if fieldErrs := r.validator.Validate(template, config); len(fieldErrs) > 0 {
		return &domain.ValidationError{ProviderID: providerID, Fields: fieldErrs}
	}

	r.configs[providerID] = config
	r.persist()
	return nil
}

// GetConfig returns the stored configuration for one provider
func (r *ProviderRegistry) GetConfig(providerID string) (domain.ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[providerID]
	return cfg, ok
}

// Enable marks a configured provider as participating in fan-out.
// Enabling an unconfigured provider fails with NOT_CONFIGURED.
func (r *ProviderRegistry) Enable(providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[providerID]; !ok {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	if _, ok := r.configs[providerID]; !ok {
		return domain.NewNotConfiguredError(providerID)
	}
	r.enabled[providerID] = true
	r.persist()
	return nil
}

// Disable removes a provider from the enabled set
func (r *ProviderRegistry) Disable(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enabled, providerID)
	r.persist()
}

// IsEnabled reports whether a provider participates in fan-out
func (r *ProviderRegistry) IsEnabled(providerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[providerID]
}

// EnabledProviders returns the enabled ids in registration order
func (r *ProviderRegistry) EnabledProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.enabled))
	for _, id := range r.order {
		if r.enabled[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Instantiate builds and initializes a provider from its stored config
func (r *ProviderRegistry) Instantiate(ctx context.Context, providerID string) (domain.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[providerID]
	config, configured := r.configs[providerID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerID)
	}
	if !configured {
		return nil, domain.NewNotConfiguredError(providerID)
	}

	provider := factory()
	if err := provider.Initialize(ctx, config); err != nil {
		return nil, err
	}
	return provider, nil
}

// TestConnection probes one provider regardless of its enabled state
func (r *ProviderRegistry) TestConnection(ctx context.Context, providerID string) (domain.HealthStatus, error) {
	r.mu.RLock()
	factory, ok := r.factories[providerID]
	config, configured := r.configs[providerID]
	r.mu.RUnlock()

	if !ok {
		return domain.HealthStatus{}, fmt.Errorf("unknown provider: %s", providerID)
	}
	if !configured {
		return domain.HealthStatus{}, domain.NewNotConfiguredError(providerID)
	}

	provider := factory()
	// Initialize stores the config before probing, so even a failed probe
	// leaves the adapter able to answer the health check below.
	_ = provider.Initialize(ctx, config)
	return provider.HealthCheck(ctx), nil
}

// load restores persisted configuration from the settings store
func (r *ProviderRegistry) load() {
	if r.store == nil {
		return
	}

	if blob, err := r.store.Get(configuredProvidersKey); err == nil && blob != "" {
		var configs map[string]domain.ProviderConfig
		if err := json.Unmarshal([]byte(blob), &configs); err != nil {
			r.logger.Warn("ignoring malformed persisted provider configs", zap.Error(err))
		} else {
			r.configs = configs
		}
	}

	if blob, err := r.store.Get(enabledProvidersKey); err == nil && blob != "" {
		var enabled []string
		if err := json.Unmarshal([]byte(blob), &enabled); err != nil {
			r.logger.Warn("ignoring malformed persisted enabled set", zap.Error(err))
		} else {
			for _, id := range enabled {
				r.enabled[id] = true
			}
		}
	}
}

// persist writes the current state through the settings store. Called with
// the write lock held.
func (r *ProviderRegistry) persist() {
	if r.store == nil {
		return
	}

	if blob, err := json.Marshal(r.configs); err == nil {
		if err := r.store.Set(configuredProvidersKey, string(blob)); err != nil {
			r.logger.Warn("failed to persist provider configs", zap.Error(err))
		}
	}

	enabled := make([]string, 0, len(r.enabled))
	for _, id := range r.order {
		if r.enabled[id] {
			enabled = append(enabled, id)
		}
	}
	if blob, err := json.Marshal(enabled); err == nil {
		if err := r.store.Set(enabledProvidersKey, string(blob)); err != nil {
			r.logger.Warn("failed to persist enabled set", zap.Error(err))
		}
	}
}

// healthCheckTask probes one provider for TestAllConnections
type healthCheckTask struct {
	id       string
	registry *ProviderRegistry
	mu       *sync.Mutex
	statuses map[string]domain.HealthStatus
}

func (t *healthCheckTask) Name() string { return t.id }

func (t *healthCheckTask) IsEnabled() bool { return true }

func (t *healthCheckTask) Execute(ctx context.Context) (interface{}, error) {
	status, err := t.registry.TestConnection(ctx, t.id)
	t.mu.Lock()
	t.statuses[t.id] = status
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !status.IsHealthy {
		return nil, fmt.Errorf("unhealthy: %s", status.ErrorMessage)
	}
	return status, nil
}

// TestAllConnections probes every configured provider concurrently and
// returns the status per provider. The returned error aggregates the
// failed probes; statuses are reported for all providers either way.
func (r *ProviderRegistry) TestAllConnections(ctx context.Context, executor domain.ParallelExecutor) (map[string]domain.HealthStatus, error) {
	r.mu.RLock()
	var ids []string
	for _, id := range r.order {
		if _, ok := r.configs[id]; ok {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	statuses := make(map[string]domain.HealthStatus, len(ids))
	var mu sync.Mutex
	tasks := make([]domain.ExecutableTask, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, &healthCheckTask{id: id, registry: r, mu: &mu, statuses: statuses})
	}

	err := executor.Execute(ctx, tasks)
	return statuses, err
}
