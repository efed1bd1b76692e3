package config

// ProviderOverrides captures provider specific configuration for the active provider.
type ProviderOverrides struct {
	Vertex    VertexProviderConfig    `mapstructure:"vertex" json:"vertex"`
	Bedrock   BedrockProviderConfig   `mapstructure:"bedrock" json:"bedrock"`
	OpenAI    OpenAIProviderConfig    `mapstructure:"openai" json:"openai"`
	Azure     AzureProviderConfig     `mapstructure:"azure" json:"azure"`
	Anthropic AnthropicProviderConfig `mapstructure:"anthropic" json:"anthropic"`
}

type VertexProviderConfig struct {
	ProjectID         string `mapstructure:"gcp_project_id" json:"gcp_project_id"`
	Location          string `mapstructure:"vertex_location" json:"vertex_location"`
	Publisher         string `mapstructure:"vertex_publisher" json:"vertex_publisher"`
	CredentialsJSON   string `mapstructure:"gcp_credentials_json" json:"-"`
	CredentialsFormat string `mapstructure:"gcp_credentials_format" json:"gcp_credentials_format"`
	Endpoint          string `mapstructure:"endpoint" json:"endpoint,omitempty"`
}

type BedrockProviderConfig struct {
	Region           string `mapstructure:"region" json:"region"`
	DefaultMaxTokens int32  `mapstructure:"bedrock_default_max_tokens" json:"bedrock_default_max_tokens"`
	AnthropicVersion string `mapstructure:"anthropic_version" json:"anthropic_version"`
	AccessKeyID      string `mapstructure:"aws_access_key_id" json:"-"`
	SecretAccessKey  string `mapstructure:"aws_secret_access_key" json:"-"`
	SessionToken     string `mapstructure:"aws_session_token" json:"-"`
	Profile          string `mapstructure:"aws_profile" json:"aws_profile"`
}

type OpenAIProviderConfig struct {
	Organization string `mapstructure:"openai_organization" json:"openai_organization"`
	BaseURL      string `mapstructure:"base_url" json:"base_url"`
}

type AzureProviderConfig struct {
	Endpoint   string `mapstructure:"endpoint" json:"endpoint"`
	APIVersion string `mapstructure:"api_version" json:"api_version"`
}

type AnthropicProviderConfig struct {
	BaseURL          string `mapstructure:"base_url" json:"base_url"`
	Version          string `mapstructure:"anthropic_version" json:"anthropic_version"`
	DefaultMaxTokens int32  `mapstructure:"default_max_tokens" json:"default_max_tokens"`
}
