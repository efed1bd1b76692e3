package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ncecere/gemini_relay/internal/config"
	"github.com/ncecere/gemini_relay/internal/providers"
)

// inspectproviders lists the registered providers and, with -check, builds the
// configured one and runs its health check.
func main() {
	configFile := flag.String("config", "", "path to relay.yaml")
	check := flag.Bool("check", false, "build the configured provider and run its health check")
	timeout := flag.Duration("timeout", 10*time.Second, "health check timeout")
	flag.Parse()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCAPABILITIES\tDESCRIPTION")
	for _, def := range providers.DefaultDefinitions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Name, def.CapabilityList(), def.Description)
	}
	tw.Flush()

	if !*check {
		return
	}
	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	provider, err := providers.NewFactory(cfg).Build(ctx)
	if err != nil {
		log.Fatalf("build provider: %v", err)
	}
	defer provider.Shutdown()

	fmt.Printf("\nactive provider: %s (model %s, file uploads %v)\n", provider.Name, provider.Model, provider.CanUpload())
	if provider.Health == nil {
		fmt.Println("health: no check available")
		return
	}
	start := time.Now()
	if err := provider.Health(ctx); err != nil {
		log.Fatalf("health: failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
	}
	fmt.Printf("health: ok (%s)\n", time.Since(start).Round(time.Millisecond))
}
