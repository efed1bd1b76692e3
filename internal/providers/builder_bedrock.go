package providers

import (
	"context"
	"fmt"

	"github.com/ncecere/gemini_relay/internal/adapters/bedrock"
	"github.com/ncecere/gemini_relay/internal/config"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "bedrock",
		Description:  "AWS Bedrock (Anthropic Claude messages)",
		Capabilities: []Capability{CapGenerate},
		Builder:      buildBedrockProvider,
	})
}

func buildBedrockProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	override := cfg.Provider.Bedrock

	region := pickFirst(override.Region)
	if region == "" {
		return Provider{}, fmt.Errorf("aws region required for bedrock provider")
	}

	adapter, err := bedrock.New(ctx, bedrock.Options{
		Region:           region,
		Profile:          pickFirst(override.Profile),
		AccessKeyID:      pickFirst(override.AccessKeyID),
		SecretAccessKey:  pickFirst(override.SecretAccessKey),
		SessionToken:     pickFirst(override.SessionToken),
		ModelID:          cfg.Provider.Model,
		DefaultMaxTokens: override.DefaultMaxTokens,
		AnthropicVersion: pickFirst(override.AnthropicVersion),
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	md["region"] = region
	md["model_id"] = cfg.Provider.Model

	return Provider{
		Name:      "bedrock",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Health:    adapter.HealthCheck,
	}, nil
}
