package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	"github.com/ncecere/gemini_relay/internal/models"
)

// Options configure the native OpenAI adapter.
type Options struct {
	APIKey       string
	BaseURL      string
	Organization string
	Model        string

	// AzureEndpoint switches the client to an Azure OpenAI resource. Model
	// is then the deployment name.
	AzureEndpoint   string
	AzureAPIVersion string

	Extra []option.RequestOption
}

const defaultAzureAPIVersion = "2024-07-01-preview"

// Adapter wraps the official OpenAI SDK for native and compatible deployments.
type Adapter struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI adapter using the provided API key and optional base URL/organization.
func New(opts Options) (*Adapter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("openai: model required")
	}

	requestOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if endpoint := strings.TrimSpace(opts.AzureEndpoint); endpoint != "" {
		version := strings.TrimSpace(opts.AzureAPIVersion)
		if version == "" {
			version = defaultAzureAPIVersion
		}
		requestOpts = append(requestOpts,
			azure.WithEndpoint(strings.TrimSuffix(endpoint, "/"), version),
			azure.WithAPIKey(opts.APIKey),
		)
	} else {
		requestOpts = append(requestOpts, option.WithAPIKey(opts.APIKey))
	}
	if strings.TrimSpace(opts.BaseURL) != "" && strings.TrimSpace(opts.AzureEndpoint) == "" {
		requestOpts = append(requestOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	if strings.TrimSpace(opts.Organization) != "" {
		requestOpts = append(requestOpts, option.WithOrganization(strings.TrimSpace(opts.Organization)))
	}
	requestOpts = append(requestOpts, opts.Extra...)

	client := openai.NewClient(requestOpts...)
	return &Adapter{client: &client, model: opts.Model}, nil
}

// Generate performs a single non-streaming chat completion with one user message.
func (a *Adapter) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	params, err := buildChatParams(a.model, parts)
	if err != nil {
		return models.Generation{}, err
	}
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return models.Generation{}, err
	}
	return convertChatResponse(*resp)
}

// HealthCheck uses the Models API as a lightweight readiness probe.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	_, err := a.client.Models.List(ctx)
	return err
}
