package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncecere/gemini_relay/internal/config"
	"github.com/ncecere/gemini_relay/internal/health"
	"github.com/ncecere/gemini_relay/internal/observability"
	"github.com/ncecere/gemini_relay/internal/providers"
	"github.com/ncecere/gemini_relay/internal/relay"
	"github.com/ncecere/gemini_relay/internal/services/staging"
	"github.com/ncecere/gemini_relay/internal/storage/blob"
)

// Container aggregates runtime dependencies for handlers and background loops.
// Everything in it is built once at startup and read-only afterwards.
type Container struct {
	Config        *config.Config
	Provider      providers.Provider
	Staging       *staging.Service
	Relay         *relay.Service
	HealthMon     *health.Monitor
	Observability *observability.Provider
}

// NewContainer builds the configured provider and every dependency around it.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	provider, err := providers.NewFactory(cfg).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build provider: %w", err)
	}
	container, err := NewContainerWithProvider(ctx, cfg, provider)
	if err != nil {
		_ = provider.Shutdown()
		return nil, err
	}
	return container, nil
}

// NewContainerWithProvider wires the container around an already built provider.
func NewContainerWithProvider(ctx context.Context, cfg *config.Config, provider providers.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if provider.Generator == nil {
		return nil, fmt.Errorf("provider generator is required")
	}

	obsProvider, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	blobStore, err := blob.New(ctx, cfg.Staging)
	if err != nil {
		_ = obsProvider.Shutdown(ctx)
		return nil, fmt.Errorf("init staging store: %w", err)
	}
	stagingSvc := staging.NewService(blobStore, cfg.Staging)

	relaySvc := relay.NewService(relay.Options{
		Provider:      provider,
		Staging:       stagingSvc,
		Observability: obsProvider,
		DeleteUploads: cfg.Provider.DeleteUploads,
	})

	var check health.CheckFunc
	if provider.Health != nil {
		check = provider.Health
	}

	return &Container{
		Config:        cfg,
		Provider:      provider,
		Staging:       stagingSvc,
		Relay:         relaySvc,
		HealthMon:     health.NewMonitor(provider.Name, check, cfg.Health),
		Observability: obsProvider,
	}, nil
}

// Close releases the provider client and flushes telemetry.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return errors.Join(c.Provider.Shutdown(), c.Observability.Shutdown(ctx))
}
