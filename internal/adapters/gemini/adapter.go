package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ncecere/gemini_relay/internal/models"
)

const defaultPollInterval = 500 * time.Millisecond

// Options configure the Gemini API adapter.
type Options struct {
	APIKey       string
	Model        string
	Endpoint     string
	PollInterval time.Duration
	Extra        []option.ClientOption
}

// Adapter wraps the Gemini API client: content generation plus the File API
// used for by-reference uploads.
type Adapter struct {
	client       *genai.Client
	model        string
	pollInterval time.Duration
}

// New creates a Gemini adapter authenticated with an API key.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("gemini: model required")
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}
	clientOpts = append(clientOpts, opts.Extra...)

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Adapter{client: client, model: opts.Model, pollInterval: poll}, nil
}

func (a *Adapter) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	converted, err := toGenaiParts(parts)
	if err != nil {
		return models.Generation{}, err
	}
	resp, err := a.client.GenerativeModel(a.model).GenerateContent(ctx, converted...)
	if err != nil {
		return models.Generation{}, err
	}
	return convertResponse(resp, a.model)
}

// Upload streams r into the Gemini File API and waits until the file can be
// referenced from a prompt.
func (a *Adapter) Upload(ctx context.Context, name, mimeType string, r io.Reader) (models.Part, error) {
	file, err := a.client.UploadFile(ctx, "", r, &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    mimeType,
	})
	if err != nil {
		return models.Part{}, fmt.Errorf("gemini: upload file: %w", err)
	}
	file, err = a.waitActive(ctx, file)
	if err != nil {
		return models.Part{}, err
	}
	fileMIME := file.MIMEType
	if fileMIME == "" {
		fileMIME = mimeType
	}
	return models.FileRefPart(file.URI, fileMIME, file.Name), nil
}

// DeleteUpload removes a file created by Upload.
func (a *Adapter) DeleteUpload(ctx context.Context, part models.Part) error {
	if part.Kind != models.PartFileRef || part.Name == "" {
		return nil
	}
	return a.client.DeleteFile(ctx, part.Name)
}

// HealthCheck fetches model metadata, which costs no tokens.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	_, err := a.client.GenerativeModel(a.model).Info(ctx)
	return err
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	if file.State != genai.FileStateProcessing {
		return checkFileState(file)
	}
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		next, err := a.client.GetFile(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("gemini: poll file %s: %w", file.Name, err)
		}
		file = next
	}
	return checkFileState(file)
}

func checkFileState(file *genai.File) (*genai.File, error) {
	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("gemini: file %s failed processing", file.Name)
	}
	if file.URI == "" {
		return nil, fmt.Errorf("gemini: file %s has no uri", file.Name)
	}
	return file, nil
}
