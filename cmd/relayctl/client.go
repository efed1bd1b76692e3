package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client calls the relay HTTP routes and unwraps the response envelope.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Error   bool   `json:"error"`
	Output  string `json:"output"`
	Message string `json:"message"`
}

// RelayError is a failure envelope returned by the server.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error (%d): %s", e.Status, e.Message)
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.postJSON(ctx, "/generate-text", map[string]string{"prompt": prompt})
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.postJSON(ctx, "/api/chat", map[string]string{"message": message})
}

// GenerateFromFile uploads path under the form field named after kind.
func (c *Client) GenerateFromFile(ctx context.Context, kind, path, prompt string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if prompt != "" {
		if err := w.WriteField("prompt", prompt); err != nil {
			return "", err
		}
	}
	part, err := w.CreateFormFile(kind, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return c.do(ctx, "/generate-from-"+kind, w.FormDataContentType(), &body)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(data))
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &RelayError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if env.Error {
		return "", &RelayError{Status: resp.StatusCode, Message: env.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", &RelayError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if env.Output == "" {
		return "", errors.New("relay returned an empty output")
	}
	return env.Output, nil
}
