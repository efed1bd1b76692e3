package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ncecere/gemini_relay/internal/models"
)

const defaultBaseURL = "https://api.anthropic.com"
const defaultVersion = "2023-06-01"
const defaultMaxTokens = 1024

// Options configures the native Anthropic adapter.
type Options struct {
	APIKey           string
	BaseURL          string
	Version          string
	Model            string
	DefaultMaxTokens int32
	HTTPClient       *http.Client
}

type Adapter struct {
	client  *http.Client
	baseURL string
	opts    Options
}

func New(opts Options) (*Adapter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("anthropic: api key required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("anthropic: model required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(opts.Version) == "" {
		opts.Version = defaultVersion
	}
	if opts.DefaultMaxTokens <= 0 {
		opts.DefaultMaxTokens = defaultMaxTokens
	}
	if opts.HTTPClient == nil {
		// no client timeout, the request context bounds the call
		opts.HTTPClient = &http.Client{}
	}
	return &Adapter{
		client:  opts.HTTPClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		opts:    opts,
	}, nil
}

// Generate sends one user turn to /v1/messages.
func (a *Adapter) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	msg, err := UserMessage("anthropic", parts)
	if err != nil {
		return models.Generation{}, err
	}
	payload := Request{
		Model:     a.opts.Model,
		Messages:  []Message{msg},
		MaxTokens: a.opts.DefaultMaxTokens,
	}
	var resp Response
	if err := a.postJSON(ctx, "/v1/messages", payload, &resp); err != nil {
		return models.Generation{}, err
	}
	return ConvertResponse("anthropic", resp, a.opts.Model)
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/models", a.baseURL), nil)
	if err != nil {
		return err
	}
	a.setHeaders(req)
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return nil
}

func (a *Adapter) postJSON(ctx context.Context, path string, payload Request, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", a.opts.APIKey)
	req.Header.Set("anthropic-version", a.opts.Version)
}

type apiErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed apiErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return fmt.Errorf("anthropic api error %d (%s): %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
	}
	return fmt.Errorf("anthropic api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
