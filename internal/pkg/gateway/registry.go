package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
)

var (
	ErrNotRegistered    = errors.New("no gateway registered for provider")
	ErrProviderInactive = errors.New("payment provider is not active")
	ErrInvalidConfig    = errors.New("invalid provider config")
)

// ProviderSource loads a provider record by name.
type ProviderSource interface {
	FindByName(ctx context.Context, name string) (*models.PaymentProvider, error)
}

type registration struct {
	factory Factory
	schema  *gojsonschema.Schema
}

// Registry maps provider names to factories and caches built gateways.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]registration
	instances map[string]Gateway
	source    ProviderSource
	metrics   *metrics.Metrics
}

func NewRegistry(source ProviderSource, m *metrics.Metrics) *Registry {
	return &Registry{
		factories: make(map[string]registration),
		instances: make(map[string]Gateway),
		source:    source,
		metrics:   m,
	}
}

// Register adds a factory. The config schema is compiled up front.
func (r *Registry) Register(f Factory) error {
	name := models.NormalizeProviderName(f.Name())
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(f.ConfigSchema()))
	if err != nil {
		return fmt.Errorf("gateway %s: compile config schema: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("gateway %s already registered", name)
	}
	r.factories[name] = registration{factory: f, schema: schema}
	log.Infof("[Gateway] registered factory for %s", name)
	return nil
}

// Registered lists the provider names with a factory, sorted.
func (r *Registry) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateConfig checks config against the factory schema of name.
// Returns ErrNotRegistered when no factory exists.
func (r *Registry) ValidateConfig(name string, config map[string]any) error {
	r.mu.RLock()
	reg, ok := r.factories[models.NormalizeProviderName(name)]
	r.mu.RUnlock()
	if !ok {
		return ErrNotRegistered
	}
	return validateAgainst(reg.schema, config)
}

func validateAgainst(schema *gojsonschema.Schema, config map[string]any) error {
	if config == nil {
		config = map[string]any{}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(details, "; "))
	}
	return nil
}

// Get returns the gateway for an active provider, building it on first use.
func (r *Registry) Get(ctx context.Context, name string) (Gateway, error) {
	name = models.NormalizeProviderName(name)

	r.mu.RLock()
	gw, cached := r.instances[name]
	reg, registered := r.factories[name]
	r.mu.RUnlock()
	if cached {
		return gw, nil
	}
	if !registered {
		return nil, ErrNotRegistered
	}

	provider, err := r.source.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load provider %s: %w", name, err)
	}
	if !provider.IsActive {
		return nil, ErrProviderInactive
	}
	if err := validateAgainst(reg.schema, provider.Config); err != nil {
		r.metrics.ProviderOperation(name, "initialize", "error")
		return nil, err
	}
	gw, err = reg.factory.New(provider.Config)
	if err != nil {
		r.metrics.ProviderOperation(name, "initialize", "error")
		return nil, fmt.Errorf("initialize gateway %s: %w", name, err)
	}
	r.metrics.ProviderOperation(name, "initialize", "success")

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instances[name]; ok {
		return existing, nil
	}
	r.instances[name] = gw
	log.Infof("[Gateway] initialized %s", name)
	return gw, nil
}

// Refresh drops the cached gateway of a provider; the next Get rebuilds it.
func (r *Registry) Refresh(name string) {
	name = models.NormalizeProviderName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[name]; ok {
		delete(r.instances, name)
		log.Debugf("[Gateway] dropped cached instance of %s", name)
	}
}

// RefreshAll drops every cached gateway.
func (r *Registry) RefreshAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[string]Gateway)
}
