package conference

import (
	"context"
	"fmt"
	"log/slog"

	"econnect/internal/conference/jitsi"
)

// Factory implements EngineFactory interface
type Factory struct{}

// NewFactory creates a new engine factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEngine creates an engine instance based on provider type and configuration
func (f *Factory) CreateEngine(ctx context.Context, provider EngineProvider, config interface{}) (EngineInterface, error) {
	switch provider {
	case EngineJitsi:
		jitsiConfig, ok := config.(*jitsi.Config)
		if !ok {
			return nil, fmt.Errorf("invalid jitsi config type, expected *jitsi.Config")
		}
		return NewJitsiAdapter(ctx, jitsiConfig)

	default:
		return nil, fmt.Errorf("unsupported engine provider: %s", provider)
	}
}

// GetSupportedProviders returns list of supported engine providers
func (f *Factory) GetSupportedProviders() []EngineProvider {
	return []EngineProvider{
		EngineJitsi,
	}
}

// EngineRegistry manages multiple engine instances
type EngineRegistry struct {
	engines map[EngineProvider]EngineInterface
	factory EngineFactory
	primary EngineProvider
}

// NewEngineRegistry creates a new engine registry
func NewEngineRegistry(factory EngineFactory) *EngineRegistry {
	return &EngineRegistry{
		engines: make(map[EngineProvider]EngineInterface),
		factory: factory,
	}
}

// RegisterEngine registers an engine instance
func (r *EngineRegistry) RegisterEngine(ctx context.Context, provider EngineProvider, config interface{}) error {
	engine, err := r.factory.CreateEngine(ctx, provider, config)
	if err != nil {
		return fmt.Errorf("failed to create %s engine: %w", provider, err)
	}

	r.engines[provider] = engine

	// Set first registered engine as primary
	if r.primary == "" {
		r.primary = provider
	}

	return nil
}

// GetEngine returns an engine instance by provider
func (r *EngineRegistry) GetEngine(provider EngineProvider) (EngineInterface, error) {
	engine, exists := r.engines[provider]
	if !exists {
		return nil, fmt.Errorf("engine provider %s not registered", provider)
	}
	return engine, nil
}

// GetPrimaryEngine returns the primary engine instance
func (r *EngineRegistry) GetPrimaryEngine() (EngineInterface, error) {
	if r.primary == "" {
		return nil, fmt.Errorf("no primary engine configured")
	}
	return r.GetEngine(r.primary)
}

// SetPrimaryEngine sets the primary engine provider
func (r *EngineRegistry) SetPrimaryEngine(provider EngineProvider) error {
	if _, exists := r.engines[provider]; !exists {
		return fmt.Errorf("engine provider %s not registered", provider)
	}
	r.primary = provider
	return nil
}

// Close gracefully closes all engine connections
func (r *EngineRegistry) Close(ctx context.Context) error {
	for provider, engine := range r.engines {
		if err := engine.Close(ctx); err != nil {
			// Log error but continue closing other engines
			slog.Error("error closing engine", "provider", provider, "error", err)
		}
	}
	return nil
}
