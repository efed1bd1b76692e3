package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearRelayEnv(t *testing.T) {
	t.Helper()
	for _, name := range append([]string{"RELAY_PROVIDER_API_KEY", "RELAY_CONFIG_FILE"}, legacyAPIKeyEnv...) {
		t.Setenv(name, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearRelayEnv(t)
	t.Setenv("RELAY_PROVIDER_API_KEY", "test-key")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.Server.ListenAddr)
	require.Equal(t, "gemini", cfg.Provider.Name)
	require.Equal(t, "gemini-2.5-flash", cfg.Provider.Model)
	require.Equal(t, "test-key", cfg.Provider.APIKey)
	require.Equal(t, "local", cfg.Staging.Backend)
	require.Equal(t, filepath.Join(os.TempDir(), "gemini-relay-uploads"), cfg.Staging.Local.Directory)
	require.Equal(t, time.Hour, cfg.Staging.OrphanTTL)
	require.Equal(t, int64(20*1024*1024), cfg.Staging.MaxBytes())
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadLegacyAPIKeyFallback(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "gemini key", env: map[string]string{"GEMINI_API_KEY": "g"}, want: "g"},
		{name: "google key", env: map[string]string{"GOOGLE_API_KEY": "gg"}, want: "gg"},
		{name: "react app key", env: map[string]string{"REACT_APP_GEMINI_KEY": "r"}, want: "r"},
		{name: "gemini wins", env: map[string]string{"GEMINI_API_KEY": "g", "REACT_APP_GEMINI_KEY": "r"}, want: "g"},
		{name: "prefixed wins", env: map[string]string{"RELAY_PROVIDER_API_KEY": "p", "GEMINI_API_KEY": "g"}, want: "p"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearRelayEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(Options{})
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg.Provider.APIKey)
		})
	}
}

func TestLoadMissingAPIKeyFailsFast(t *testing.T) {
	clearRelayEnv(t)

	_, err := Load(Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RELAY_PROVIDER_API_KEY")
}

func TestLoadFromFile(t *testing.T) {
	clearRelayEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	content := `
server:
  listen_addr: ":9090"
  body_limit_mb: 10
provider:
  name: bedrock
  model: anthropic.claude-3-haiku-20240307-v1:0
  bedrock:
    region: us-east-1
staging:
  max_size_mb: 5
  orphan_ttl: 30m
log:
  level: DEBUG
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.ListenAddr)
	require.Equal(t, "bedrock", cfg.Provider.Name)
	require.Equal(t, "us-east-1", cfg.Provider.Bedrock.Region)
	require.Equal(t, int32(1024), cfg.Provider.Bedrock.DefaultMaxTokens)
	require.Equal(t, 30*time.Minute, cfg.Staging.OrphanTTL)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{ListenAddr: ":3000", BodyLimitMB: 50},
			Provider: ProviderConfig{Name: "gemini", Model: "gemini-2.5-flash", APIKey: "k"},
			Staging:  StagingConfig{MaxSizeMB: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "llama" }, wantErr: "not supported"},
		{name: "missing model", mutate: func(c *Config) { c.Provider.Model = " " }, wantErr: "provider.model"},
		{name: "vertex needs project", mutate: func(c *Config) { c.Provider.Name = "vertex" }, wantErr: "gcp_project_id"},
		{name: "azure needs endpoint", mutate: func(c *Config) { c.Provider.Name = "azure" }, wantErr: "provider.azure.endpoint"},
		{name: "azure valid", mutate: func(c *Config) {
			c.Provider.Name = "azure"
			c.Provider.Azure.Endpoint = "https://example.openai.azure.com"
		}},
		{name: "anthropic needs key", mutate: func(c *Config) {
			c.Provider.Name = "anthropic"
			c.Provider.APIKey = ""
		}, wantErr: "RELAY_PROVIDER_API_KEY"},
		{name: "anthropic valid", mutate: func(c *Config) { c.Provider.Name = "ANTHROPIC" }},
		{name: "bedrock needs region", mutate: func(c *Config) { c.Provider.Name = "bedrock" }, wantErr: "region"},
		{name: "s3 needs bucket", mutate: func(c *Config) { c.Staging.Backend = "s3" }, wantErr: "staging.s3.bucket"},
		{name: "unknown backend", mutate: func(c *Config) { c.Staging.Backend = "gcs" }, wantErr: "staging.backend"},
		{name: "staging above body limit", mutate: func(c *Config) { c.Staging.MaxSizeMB = 80 }, wantErr: "body_limit_mb"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{}
	cfg.Provider.APIKey = "secret-key"
	cfg.Provider.Bedrock.SecretAccessKey = "aws-secret"
	cfg.Staging.EncryptionKey = "enc"
	cfg.Provider.Model = "gemini-2.5-flash"

	red := cfg.Redacted()
	require.Equal(t, "[redacted]", red.Provider.APIKey)
	require.Equal(t, "[redacted]", red.Provider.Bedrock.SecretAccessKey)
	require.Equal(t, "[redacted]", red.Staging.EncryptionKey)
	require.Empty(t, red.Provider.Bedrock.AccessKeyID)
	require.Equal(t, "gemini-2.5-flash", red.Provider.Model)
	require.Equal(t, "secret-key", cfg.Provider.APIKey)
}
