package providers

import (
	"context"
	"fmt"

	native "github.com/ncecere/gemini_relay/internal/adapters/openai"
	"github.com/ncecere/gemini_relay/internal/config"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "openai",
		Description:  "OpenAI chat completions (inline images, audio and files)",
		Capabilities: []Capability{CapGenerate},
		Builder:      buildOpenAIProvider,
	})
}

func buildOpenAIProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	override := cfg.Provider.OpenAI

	apiKey := pickFirst(cfg.Provider.APIKey)
	if apiKey == "" {
		return Provider{}, fmt.Errorf("openai provider requires api key")
	}

	adapter, err := native.New(native.Options{
		APIKey:       apiKey,
		BaseURL:      pickFirst(override.BaseURL),
		Organization: pickFirst(override.Organization),
		Model:        cfg.Provider.Model,
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	if base := pickFirst(override.BaseURL); base != "" {
		md["base_url"] = base
	}

	return Provider{
		Name:      "openai",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Health:    adapter.HealthCheck,
	}, nil
}
