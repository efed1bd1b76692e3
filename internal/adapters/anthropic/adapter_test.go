package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/gemini_relay/internal/models"
	"github.com/ncecere/gemini_relay/internal/providers/fixtures"
)

func TestGenerate(t *testing.T) {
	var (
		gotPath    string
		gotKey     string
		gotVersion string
		gotBody    Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixtures.MustRead("bedrock_anthropic_response.json"))
	}))
	defer srv.Close()

	a, err := New(Options{APIKey: "sk-ant", BaseURL: srv.URL, Model: "claude-3-haiku-20240307"})
	require.NoError(t, err)

	gen, err := a.Generate(context.Background(), []models.Part{
		models.TextPart("Describe this uploaded document."),
		models.InlinePart([]byte("%PDF-"), "application/pdf", "q.pdf"),
	})
	require.NoError(t, err)
	require.Equal(t, "The document is a quarterly report.\nRevenue grew 12%.", gen.Text)
	require.Equal(t, "stop", gen.FinishReason)

	require.Equal(t, "/v1/messages", gotPath)
	require.Equal(t, "sk-ant", gotKey)
	require.Equal(t, defaultVersion, gotVersion)
	require.Equal(t, "claude-3-haiku-20240307", gotBody.Model)
	require.Empty(t, gotBody.AnthropicVersion)
	require.Equal(t, int32(defaultMaxTokens), gotBody.MaxTokens)
	require.Equal(t, "document", gotBody.Messages[0].Content[1].Type)
	require.Equal(t, "JVBERi0=", gotBody.Messages[0].Content[1].Source.Data)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	a, err := New(Options{APIKey: "bad", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = a.Generate(context.Background(), []models.Part{models.TextPart("hi")})
	require.ErrorContains(t, err, "invalid x-api-key")
	require.ErrorContains(t, err, "401")

	require.Error(t, a.HealthCheck(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	a, err := New(Options{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"})
	require.NoError(t, err)
	require.NoError(t, a.HealthCheck(context.Background()))
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Model: "m"})
	require.ErrorContains(t, err, "api key")
	_, err = New(Options{APIKey: "k"})
	require.ErrorContains(t, err, "model")
}
