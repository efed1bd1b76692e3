package providers

import (
	"context"
	"fmt"

	"github.com/ncecere/gemini_relay/internal/adapters/gemini"
	"github.com/ncecere/gemini_relay/internal/config"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "gemini",
		Description:  "Google Gemini API (generateContent + File API)",
		Capabilities: []Capability{CapGenerate, CapUpload},
		Builder:      buildGeminiProvider,
	})
}

func buildGeminiProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	apiKey := pickFirst(cfg.Provider.APIKey)
	if apiKey == "" {
		return Provider{}, fmt.Errorf("gemini provider requires api key")
	}

	adapter, err := gemini.New(ctx, gemini.Options{
		APIKey: apiKey,
		Model:  cfg.Provider.Model,
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	md["delete_uploads"] = fmt.Sprint(cfg.Provider.DeleteUploads)

	return Provider{
		Name:      "gemini",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Uploader:  adapter,
		Health:    adapter.HealthCheck,
		Close:     adapter.Close,
	}, nil
}
