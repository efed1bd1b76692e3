package providers

import (
	"context"
	"fmt"

	native "github.com/ncecere/gemini_relay/internal/adapters/anthropic"
	"github.com/ncecere/gemini_relay/internal/config"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "anthropic",
		Description:  "Anthropic Messages API (inline images, PDFs and text documents)",
		Capabilities: []Capability{CapGenerate},
		Builder:      buildAnthropicProvider,
	})
}

func buildAnthropicProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	override := cfg.Provider.Anthropic

	apiKey := pickFirst(cfg.Provider.APIKey)
	if apiKey == "" {
		return Provider{}, fmt.Errorf("anthropic provider requires api key")
	}

	adapter, err := native.New(native.Options{
		APIKey:           apiKey,
		BaseURL:          pickFirst(override.BaseURL),
		Version:          pickFirst(override.Version),
		Model:            cfg.Provider.Model,
		DefaultMaxTokens: override.DefaultMaxTokens,
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	if base := pickFirst(override.BaseURL); base != "" {
		md["base_url"] = base
	}

	return Provider{
		Name:      "anthropic",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Health:    adapter.HealthCheck,
	}, nil
}
