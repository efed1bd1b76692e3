package providers

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/ncecere/gemini_relay/internal/config"
)

// Builder constructs the Provider for the configured backend.
type Builder func(ctx context.Context, cfg *config.Config) (Provider, error)

// Factory resolves provider.name against a snapshot of the registered definitions.
type Factory struct {
	cfg  *config.Config
	defs map[string]Definition
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg, defs: maps.Clone(registered)}
}

// Register adds or replaces a definition on this factory only.
func (f *Factory) Register(def Definition) error {
	def, err := normalizeDefinition(def)
	if err != nil {
		return err
	}
	if f.defs == nil {
		f.defs = make(map[string]Definition)
	}
	f.defs[def.Name] = def
	return nil
}

// Build instantiates the provider named by provider.name and checks it
// against its definition.
func (f *Factory) Build(ctx context.Context) (Provider, error) {
	cfg := EnsureConfig(f.cfg)
	name := strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	def, ok := f.defs[name]
	if !ok {
		return Provider{}, fmt.Errorf("provider %q unsupported", cfg.Provider.Name)
	}
	provider, err := def.Builder(ctx, cfg)
	if err != nil {
		return Provider{}, fmt.Errorf("provider %q: %w", name, err)
	}
	if err := def.verify(provider); err != nil {
		_ = provider.Shutdown()
		return Provider{}, fmt.Errorf("provider %q: %w", name, err)
	}
	if provider.Name == "" {
		provider.Name = name
	}
	if provider.Model == "" {
		provider.Model = cfg.Provider.Model
	}
	return provider, nil
}
