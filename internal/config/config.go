package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the relay service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Provider      ProviderConfig      `mapstructure:"provider"`
	Staging       StagingConfig       `mapstructure:"staging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Health        HealthConfig        `mapstructure:"health"`
	Log           LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
	PublicDir             string        `mapstructure:"public_dir"`
}

type ProviderConfig struct {
	Name              string `mapstructure:"name"`
	Model             string `mapstructure:"model"`
	APIKey            string `mapstructure:"api_key"`
	DeleteUploads     bool   `mapstructure:"delete_uploads"`
	ProviderOverrides `mapstructure:",squash"`
}

type StagingConfig struct {
	Backend       string             `mapstructure:"backend"`
	MaxSizeMB     int                `mapstructure:"max_size_mb"`
	OrphanTTL     time.Duration      `mapstructure:"orphan_ttl"`
	SweepInterval time.Duration      `mapstructure:"sweep_interval"`
	EncryptionKey string             `mapstructure:"encryption_key"`
	S3            StagingS3Config    `mapstructure:"s3"`
	Local         StagingLocalConfig `mapstructure:"local"`
}

type StagingS3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type StagingLocalConfig struct {
	Directory string `mapstructure:"directory"`
}

// MaxBytes is the per-upload cap in bytes.
func (s StagingConfig) MaxBytes() int64 {
	return int64(s.MaxSizeMB) * 1024 * 1024
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

type HealthConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// legacyAPIKeyEnv lists the environment variables consulted, in order, when
// provider.api_key is not set through RELAY_PROVIDER_API_KEY or a config file.
var legacyAPIKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "REACT_APP_GEMINI_KEY"}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("RELAY_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		v.SetConfigName("relay")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		cfg.Provider.APIKey = lookupLegacyAPIKey()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func lookupLegacyAPIKey() string {
	for _, name := range legacyAPIKeyEnv {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return ""
}

// Validate ensures required values are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("missing required configuration: RELAY_SERVER_LISTEN_ADDR")
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be > 0")
	}
	if c.Server.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be >= 0")
	}

	if err := c.Provider.validate(); err != nil {
		return err
	}
	if err := c.Staging.validate(); err != nil {
		return err
	}
	if c.Staging.MaxSizeMB > c.Server.BodyLimitMB {
		return fmt.Errorf("staging.max_size_mb cannot exceed server.body_limit_mb")
	}
	if err := c.Health.validate(); err != nil {
		return err
	}
	if err := c.Log.validate(); err != nil {
		return err
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
	if p.Name == "" {
		p.Name = "gemini"
	}
	if strings.TrimSpace(p.Model) == "" {
		return fmt.Errorf("provider.model must be provided")
	}

	switch p.Name {
	case "gemini", "openai":
		if strings.TrimSpace(p.APIKey) == "" {
			return fmt.Errorf("missing required configuration: RELAY_PROVIDER_API_KEY (or GEMINI_API_KEY)")
		}
	case "anthropic":
		if strings.TrimSpace(p.APIKey) == "" {
			return fmt.Errorf("missing required configuration: RELAY_PROVIDER_API_KEY")
		}
		if p.Anthropic.DefaultMaxTokens < 0 {
			return fmt.Errorf("provider.anthropic.default_max_tokens must be >= 0")
		}
	case "azure":
		if strings.TrimSpace(p.APIKey) == "" {
			return fmt.Errorf("missing required configuration: RELAY_PROVIDER_API_KEY")
		}
		if strings.TrimSpace(p.Azure.Endpoint) == "" {
			return fmt.Errorf("provider.azure.endpoint must be provided for azure")
		}
	case "vertex":
		if strings.TrimSpace(p.Vertex.ProjectID) == "" {
			return fmt.Errorf("provider.vertex.gcp_project_id must be provided for vertex")
		}
		if strings.TrimSpace(p.Vertex.CredentialsJSON) == "" {
			return fmt.Errorf("provider.vertex.gcp_credentials_json must be provided for vertex")
		}
	case "bedrock":
		if strings.TrimSpace(p.Bedrock.Region) == "" {
			return fmt.Errorf("provider.bedrock.region must be provided for bedrock")
		}
		if p.Bedrock.DefaultMaxTokens < 0 {
			return fmt.Errorf("provider.bedrock.bedrock_default_max_tokens must be >= 0")
		}
	default:
		return fmt.Errorf("provider.name %q is not supported", p.Name)
	}
	return nil
}

func (s *StagingConfig) validate() error {
	if s.MaxSizeMB <= 0 {
		return fmt.Errorf("staging.max_size_mb must be > 0")
	}
	if s.OrphanTTL <= 0 {
		s.OrphanTTL = time.Hour
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = 15 * time.Minute
	}
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = "local"
	}
	switch s.Backend {
	case "local":
		if strings.TrimSpace(s.Local.Directory) == "" {
			s.Local.Directory = filepath.Join(os.TempDir(), "gemini-relay-uploads")
		}
	case "s3":
		if strings.TrimSpace(s.S3.Bucket) == "" {
			return fmt.Errorf("staging.s3.bucket must be provided when backend is s3")
		}
	default:
		return fmt.Errorf("staging.backend %q is not supported", s.Backend)
	}
	return nil
}

func (h *HealthConfig) validate() error {
	if h.CheckInterval < 0 {
		return fmt.Errorf("health.check_interval must be >= 0")
	}
	if h.Timeout <= 0 {
		h.Timeout = 10 * time.Second
	}
	return nil
}

func (l *LogConfig) validate() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":3000")
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")
	v.SetDefault("server.public_dir", "")

	v.SetDefault("provider.name", "gemini")
	v.SetDefault("provider.model", "gemini-2.5-flash")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.delete_uploads", true)
	v.SetDefault("provider.vertex.gcp_project_id", "")
	v.SetDefault("provider.vertex.vertex_location", "us-central1")
	v.SetDefault("provider.vertex.vertex_publisher", "google")
	v.SetDefault("provider.vertex.gcp_credentials_json", "")
	v.SetDefault("provider.vertex.gcp_credentials_format", "")
	v.SetDefault("provider.vertex.endpoint", "")
	v.SetDefault("provider.openai.openai_organization", "")
	v.SetDefault("provider.openai.base_url", "")
	v.SetDefault("provider.azure.endpoint", "")
	v.SetDefault("provider.azure.api_version", "2024-07-01-preview")
	v.SetDefault("provider.anthropic.base_url", "")
	v.SetDefault("provider.anthropic.anthropic_version", "2023-06-01")
	v.SetDefault("provider.anthropic.default_max_tokens", 1024)
	v.SetDefault("provider.bedrock.region", "")
	v.SetDefault("provider.bedrock.anthropic_version", "bedrock-2023-05-31")
	v.SetDefault("provider.bedrock.bedrock_default_max_tokens", 1024)
	v.SetDefault("provider.bedrock.aws_access_key_id", "")
	v.SetDefault("provider.bedrock.aws_secret_access_key", "")
	v.SetDefault("provider.bedrock.aws_session_token", "")
	v.SetDefault("provider.bedrock.aws_profile", "")

	v.SetDefault("staging.backend", "local")
	v.SetDefault("staging.max_size_mb", 20)
	v.SetDefault("staging.orphan_ttl", "1h")
	v.SetDefault("staging.sweep_interval", "15m")
	v.SetDefault("staging.encryption_key", "")
	v.SetDefault("staging.local.directory", "")
	v.SetDefault("staging.s3.bucket", "")
	v.SetDefault("staging.s3.prefix", "uploads")
	v.SetDefault("staging.s3.region", "")
	v.SetDefault("staging.s3.endpoint", "")
	v.SetDefault("staging.s3.use_path_style", false)

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")

	v.SetDefault("health.check_interval", "5m")
	v.SetDefault("health.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}

const redactedValue = "[redacted]"

// Redacted returns a copy with secrets masked, safe for printing.
func (c Config) Redacted() Config {
	out := c
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redactedValue
	}
	out.Provider.APIKey = mask(out.Provider.APIKey)
	out.Provider.Vertex.CredentialsJSON = mask(out.Provider.Vertex.CredentialsJSON)
	out.Provider.Bedrock.AccessKeyID = mask(out.Provider.Bedrock.AccessKeyID)
	out.Provider.Bedrock.SecretAccessKey = mask(out.Provider.Bedrock.SecretAccessKey)
	out.Provider.Bedrock.SessionToken = mask(out.Provider.Bedrock.SessionToken)
	out.Staging.EncryptionKey = mask(out.Staging.EncryptionKey)
	return out
}
