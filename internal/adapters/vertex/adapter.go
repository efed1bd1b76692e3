package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ncecere/gemini_relay/internal/models"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Options configure the Vertex adapter.
type Options struct {
	ProjectID       string
	Location        string
	Publisher       string
	Model           string
	Endpoint        string
	CredentialsJSON []byte
	HTTPClient      *http.Client
}

// Adapter implements generateContent against Vertex AI.
type Adapter struct {
	client      *http.Client
	model       string
	generateURL string
	baseURL     string
}

// New creates a Vertex adapter using service-account credentials. When
// HTTPClient is set the credentials are not loaded.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.ProjectID == "" {
		return nil, errors.New("vertex: project id required")
	}
	if opts.Location == "" {
		return nil, errors.New("vertex: location required")
	}
	if opts.Model == "" {
		return nil, errors.New("vertex: model id required")
	}

	publisher := strings.TrimSpace(opts.Publisher)
	if publisher == "" {
		publisher = "google"
	}

	base := strings.TrimSpace(opts.Endpoint)
	if base == "" {
		base = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/%s/models/%s",
			opts.Location, opts.ProjectID, opts.Location, publisher, opts.Model)
	}
	base = strings.TrimSuffix(base, ":generateContent")
	base = strings.TrimSuffix(base, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		if len(opts.CredentialsJSON) == 0 {
			return nil, errors.New("vertex: credentials json required")
		}
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vertex: load credentials: %w", err)
		}
		httpClient = oauth2.NewClient(context.WithoutCancel(ctx), creds.TokenSource)
	}

	return &Adapter{
		client:      httpClient,
		model:       opts.Model,
		baseURL:     base,
		generateURL: base + ":generateContent",
	}, nil
}

func (a *Adapter) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	payload, err := buildGenerateContentRequest(parts)
	if err != nil {
		return models.Generation{}, err
	}
	var vertexResp vertexGenerateResponse
	if err := a.postJSON(ctx, a.generateURL, payload, &vertexResp); err != nil {
		return models.Generation{}, err
	}
	return convertGenerateResponse(vertexResp, a.model)
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("vertex health check status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (a *Adapter) postJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("vertex encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("vertex request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vertex decode response: %w", err)
	}
	return nil
}
