package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ncecere/gemini_relay/internal/app"
	"github.com/ncecere/gemini_relay/internal/config"
	"github.com/ncecere/gemini_relay/internal/httpserver"
	"github.com/ncecere/gemini_relay/internal/observability"
)

func main() {
	configFile := flag.String("config", "", "path to relay.yaml (overrides RELAY_CONFIG_FILE)")
	envFile := flag.String("env-file", "", "optional .env file to load before reading the environment")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, cfg.Log))

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}
	defer container.Close(context.WithoutCancel(ctx))

	go container.Staging.RunSweeper(ctx, cfg.Staging.SweepInterval)
	container.HealthMon.Start(ctx)

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	slog.Info("gemini relay listening",
		"addr", cfg.Server.ListenAddr,
		"provider", container.Provider.Name,
		"model", container.Provider.Model,
		"staging_backend", cfg.Staging.Backend,
	)
	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}
