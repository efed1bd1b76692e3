package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/ncecere/gemini_relay/internal/config"
)

// dumpconfig prints the effective configuration with secrets redacted.
func main() {
	configFile := flag.String("config", "", "path to relay.yaml")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg.Redacted()); err != nil {
		log.Fatalf("encode config: %v", err)
	}
}
