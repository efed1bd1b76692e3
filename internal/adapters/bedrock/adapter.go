package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ncecere/gemini_relay/internal/adapters/anthropic"
	"github.com/ncecere/gemini_relay/internal/models"
)

const defaultAnthropicVersion = "bedrock-2023-05-31"

// Options controls how the Bedrock adapter is initialised.
type Options struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	ModelID string

	DefaultMaxTokens int32
	AnthropicVersion string
}

// Adapter sends Anthropic Messages payloads to Claude models hosted on Amazon Bedrock.
type Adapter struct {
	client    *bedrockruntime.Client
	stsClient *sts.Client
	opts      Options
}

// New creates a Bedrock adapter using the provided credentials/region.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.Region == "" {
		return nil, errors.New("bedrock region required")
	}
	if opts.ModelID == "" {
		return nil, errors.New("bedrock model id required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
		config.WithRetryMaxAttempts(1),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		staticProvider := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)
		loadOpts = append(loadOpts, config.WithCredentialsProvider(staticProvider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if opts.AnthropicVersion == "" {
		opts.AnthropicVersion = defaultAnthropicVersion
	}
	if opts.DefaultMaxTokens <= 0 {
		opts.DefaultMaxTokens = 1024
	}

	return &Adapter{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		stsClient: sts.NewFromConfig(awsCfg),
		opts:      opts,
	}, nil
}

// Generate invokes the model once with a single user turn built from parts.
func (a *Adapter) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	body, err := buildMessagesBody(a.opts.AnthropicVersion, a.opts.DefaultMaxTokens, parts)
	if err != nil {
		return models.Generation{}, err
	}

	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.opts.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return models.Generation{}, err
	}

	var parsed anthropic.Response
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return models.Generation{}, fmt.Errorf("decode bedrock response: %w", err)
	}
	return anthropic.ConvertResponse("bedrock", parsed, a.opts.ModelID)
}

// buildMessagesBody encodes parts as an Anthropic Messages body with the
// version carried in the payload, as InvokeModel expects.
func buildMessagesBody(version string, maxTokens int32, parts []models.Part) ([]byte, error) {
	msg, err := anthropic.UserMessage("bedrock", parts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(anthropic.Request{
		AnthropicVersion: version,
		MaxTokens:        maxTokens,
		Messages:         []anthropic.Message{msg},
	})
}

// HealthCheck verifies the credentials with STS to avoid spending inference tokens.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.stsClient == nil {
		return errors.New("bedrock sts client not initialised")
	}
	_, err := a.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	return err
}
