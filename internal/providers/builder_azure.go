package providers

import (
	"context"
	"fmt"

	native "github.com/ncecere/gemini_relay/internal/adapters/openai"
	"github.com/ncecere/gemini_relay/internal/config"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "azure",
		Description:  "Azure OpenAI deployment (model is the deployment name)",
		Capabilities: []Capability{CapGenerate},
		Builder:      buildAzureProvider,
	})
}

func buildAzureProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	override := cfg.Provider.Azure

	apiKey := pickFirst(cfg.Provider.APIKey)
	if apiKey == "" {
		return Provider{}, fmt.Errorf("azure provider requires api key")
	}
	endpoint := pickFirst(override.Endpoint)
	if endpoint == "" {
		return Provider{}, fmt.Errorf("azure provider requires endpoint")
	}

	adapter, err := native.New(native.Options{
		APIKey:          apiKey,
		Model:           cfg.Provider.Model,
		AzureEndpoint:   endpoint,
		AzureAPIVersion: pickFirst(override.APIVersion),
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	md["endpoint"] = endpoint
	if version := pickFirst(override.APIVersion); version != "" {
		md["api_version"] = version
	}

	return Provider{
		Name:      "azure",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Health:    adapter.HealthCheck,
	}, nil
}
