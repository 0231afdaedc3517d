package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/circletel/payments/infra/config"
	"github.com/circletel/payments/infra/logger"
)

// DefaultProviderName is the hard-coded fallback when no valid default
// provider is configured.
const DefaultProviderName = "netcash"

// KnownProviders is the closed set of provider types the factory
// recognizes, in priority-listing order. Only netcash ships an
// implementation today; the others are reserved gateway integrations.
var KnownProviders = []string{"netcash", "payfast", "paygate", "zoho_billing"}

// Registration holds the per-provider registry entry: whether the provider
// may be selected, its priority (lower = preferred) and, optionally, an
// explicit configuration. A nil Config means the configuration is resolved
// from the environment at construction time.
type Registration struct {
	Enabled  bool              `json:"enabled"`
	Priority int               `json:"priority"`
	Config   map[string]string `json:"-"`
}

// FactoryStatus describes the factory state for ops dashboards. Purely
// descriptive, no side effects.
type FactoryStatus struct {
	Used                bool     `json:"used"`
	CachedProviders     []string `json:"cachedProviders"`
	RegisteredProviders []string `json:"registeredProviders"`
	AvailableProviders  []string `json:"availableProviders"`
	DefaultProvider     string   `json:"defaultProvider"`
}

// Factory manages payment provider instances: it lazily constructs a
// provider the first time it is requested, validates its configuration,
// and caches the instance for the lifetime of the process (or until
// ClearCache). At most one instance exists per provider type; the mutex
// keeps that invariant under concurrent GetProvider calls.
type Factory struct {
	mu      sync.Mutex
	used    bool
	entries map[string]Registration
	cache   map[string]PaymentProvider
}

// NewFactory creates a factory seeded with the default registration table.
// The factory is an explicit object owned by the composition root; pass it
// by reference to whatever needs provider access.
func NewFactory() *Factory {
	return &Factory{
		entries: map[string]Registration{
			"netcash":      {Enabled: true, Priority: 1},
			"payfast":      {Enabled: true, Priority: 2},
			"paygate":      {Enabled: true, Priority: 3},
			"zoho_billing": {Enabled: false, Priority: 4},
		},
		cache: make(map[string]PaymentProvider),
	}
}

// RegisterProvider overrides a registry entry. An override drops any cached
// instance of that type so the next GetProvider reconstructs with the new
// registration.
func (f *Factory) RegisterProvider(name string, reg Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = reg
	delete(f.cache, name)
}

// GetProvider returns the cached instance for the given provider type,
// constructing and configuration-checking it on first use.
func (f *Factory) GetProvider(name string) (PaymentProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getProviderLocked(name)
}

func (f *Factory) getProviderLocked(name string) (PaymentProvider, error) {
	f.used = true

	if p, ok := f.cache[name]; ok {
		return p, nil
	}

	entry, known := f.entries[name]
	if !known {
		return nil, fmt.Errorf("Unknown payment provider: %s", name)
	}

	if !entry.Enabled {
		return nil, fmt.Errorf("payment provider '%s' is disabled in configuration", name)
	}

	builder, ok := registeredBuilder(name)
	if !ok {
		return nil, fmt.Errorf("payment provider '%s' is not yet implemented", name)
	}

	p := builder()

	cfg := entry.Config
	if cfg == nil {
		cfg = config.GetProviderConfig(name)
	}
	if err := p.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("payment provider '%s' failed to initialize: %w", name, err)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("payment provider '%s' is not properly configured: check environment variables", name)
	}

	if err := ValidateConfigFields(name, cfg, p.GetRequiredConfig()); err != nil {
		return nil, fmt.Errorf("payment provider '%s' is not properly configured: %w", name, err)
	}

	f.cache[name] = p
	return p, nil
}

// DefaultProviderType resolves the configured default provider name. An
// unknown override falls back to the hard-coded default.
func (f *Factory) DefaultProviderType() string {
	name := config.GetEnv("DEFAULT_PAYMENT_PROVIDER", "")
	if name == "" {
		return DefaultProviderName
	}

	for _, known := range KnownProviders {
		if name == known {
			return name
		}
	}

	logger.Warn("Invalid DEFAULT_PAYMENT_PROVIDER, falling back to "+DefaultProviderName, logger.LogContext{
		Provider: name,
	})
	return DefaultProviderName
}

// GetDefaultProvider returns the configured default provider. If the
// override names a provider that is unknown or not usable, it falls back
// to the hard-coded default instead of failing.
func (f *Factory) GetDefaultProvider() (PaymentProvider, error) {
	name := f.DefaultProviderType()
	if name != DefaultProviderName {
		p, err := f.GetProvider(name)
		if err == nil {
			return p, nil
		}
		logger.Warn("Default payment provider unavailable, falling back to "+DefaultProviderName, logger.LogContext{
			Provider: name,
			Fields:   map[string]any{"error": err.Error()},
		})
	}
	return f.GetProvider(DefaultProviderName)
}

// GetProviderByPriority returns the usable provider with the lowest
// priority number among enabled registrations.
func (f *Factory) GetProviderByPriority() (PaymentProvider, error) {
	f.mu.Lock()
	type candidate struct {
		name     string
		priority int
	}
	candidates := make([]candidate, 0, len(f.entries))
	for name, entry := range f.entries {
		if entry.Enabled {
			candidates = append(candidates, candidate{name, entry.Priority})
		}
	}
	f.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].name < candidates[j].name
	})

	for _, c := range candidates {
		if p, err := f.GetProvider(c.name); err == nil {
			return p, nil
		}
	}

	return nil, fmt.Errorf("No payment providers available: configure at least one provider")
}

// IsProviderAvailable reports whether a provider type can be used. Never
// returns an error; selection failures read as unavailable.
func (f *Factory) IsProviderAvailable(name string) bool {
	p, err := f.GetProvider(name)
	return err == nil && p.IsConfigured()
}

// GetAvailableProviders lists all configured provider type names in the
// canonical order.
func (f *Factory) GetAvailableProviders() []string {
	available := make([]string, 0, len(KnownProviders))
	for _, name := range KnownProviders {
		if f.IsProviderAvailable(name) {
			available = append(available, name)
		}
	}
	return available
}

// GetProviderCapabilities returns the capabilities for a provider type, or
// nil when the provider is unavailable. Never returns an error.
func (f *Factory) GetProviderCapabilities(name string) *Capabilities {
	p, err := f.GetProvider(name)
	if err != nil {
		return nil
	}
	caps := p.GetCapabilities()
	return &caps
}

// HealthCheckAll runs health checks against every available provider
// concurrently and reports every result; one provider's failure never
// hides the others.
func (f *Factory) HealthCheckAll(ctx context.Context) []*HealthCheckResult {
	names := f.GetAvailableProviders()
	results := make([]*HealthCheckResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			p, err := f.GetProvider(name)
			if err != nil {
				results[i] = &HealthCheckResult{
					Provider:  name,
					Healthy:   false,
					Error:     err.Error(),
					CheckedAt: time.Now().UTC(),
				}
				return
			}
			results[i] = p.HealthCheck(ctx)
		}(i, name)
	}
	wg.Wait()

	return results
}

// ClearCache drops all cached provider instances. Subsequent GetProvider
// calls reconstruct and re-validate configuration.
func (f *Factory) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]PaymentProvider)
}

// Status returns a descriptive snapshot of the factory state
func (f *Factory) Status() FactoryStatus {
	f.mu.Lock()
	cached := make([]string, 0, len(f.cache))
	for name := range f.cache {
		cached = append(cached, name)
	}
	registered := make([]string, 0, len(f.entries))
	for name := range f.entries {
		registered = append(registered, name)
	}
	used := f.used
	f.mu.Unlock()

	sort.Strings(cached)
	sort.Strings(registered)

	return FactoryStatus{
		Used:                used,
		CachedProviders:     cached,
		RegisteredProviders: registered,
		AvailableProviders:  f.GetAvailableProviders(),
		DefaultProvider:     f.DefaultProviderType(),
	}
}

// DefaultFactory is the process-wide factory used by the convenience
// functions below.
var DefaultFactory = NewFactory()

// GetProvider returns a provider from the default factory
func GetProvider(name string) (PaymentProvider, error) {
	return DefaultFactory.GetProvider(name)
}

// GetDefaultProvider returns the default provider from the default factory
func GetDefaultProvider() (PaymentProvider, error) {
	return DefaultFactory.GetDefaultProvider()
}
