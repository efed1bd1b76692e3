package vertex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/gemini_relay/internal/models"
	"github.com/ncecere/gemini_relay/internal/providers/fixtures"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	adapter, err := New(context.Background(), Options{
		ProjectID:  "demo",
		Location:   "us-central1",
		Model:      "gemini-2.5-flash",
		Endpoint:   srv.URL + "/v1/models/gemini-2.5-flash",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return adapter
}

func TestGenerateSendsInlineData(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixtures.MustRead("vertex_generate_response.json"))
	})

	gen, err := adapter.Generate(context.Background(), []models.Part{
		models.TextPart("Describe this uploaded document."),
		models.InlinePart([]byte("%PDF-"), "application/pdf", "doc.pdf"),
	})
	require.NoError(t, err)
	require.Equal(t, "Hello adventurer,\nWhat quest shall we begin?", gen.Text)
	require.Equal(t, "stop", gen.FinishReason)
	require.Equal(t, models.Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18}, gen.Usage)

	require.Equal(t, http.MethodPost, method)
	require.True(t, strings.HasSuffix(path, ":generateContent"))
	require.Contains(t, string(body), `"data":"JVBERi0="`)
	var captured vertexGenerateRequest
	require.NoError(t, json.Unmarshal(body, &captured))
	require.Len(t, captured.Contents, 1)
	require.Equal(t, "user", captured.Contents[0].Role)
	require.Len(t, captured.Contents[0].Parts, 2)
	require.Equal(t, "application/pdf", captured.Contents[0].Parts[1].InlineData.MimeType)
}

func TestGenerateDecodesAPIError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad mime","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := adapter.Generate(context.Background(), []models.Part{models.TextPart("hi")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "INVALID_ARGUMENT")
	require.Contains(t, err.Error(), "bad mime")
}

func TestBuildRequestRejectsForeignFileRefs(t *testing.T) {
	_, err := buildGenerateContentRequest([]models.Part{
		models.FileRefPart("https://generativelanguage.googleapis.com/v1beta/files/abc", "image/png", "files/abc"),
	})
	require.ErrorIs(t, err, models.ErrUnsupportedPart)

	req, err := buildGenerateContentRequest([]models.Part{models.FileRefPart("gs://bucket/cat.png", "image/png", "")})
	require.NoError(t, err)
	require.Equal(t, "gs://bucket/cat.png", req.Contents[0].Parts[0].FileData.FileURI)
}

func TestConvertResponseWithoutText(t *testing.T) {
	var resp vertexGenerateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`), &resp))

	_, err := convertGenerateResponse(resp, "gemini-2.5-flash")
	require.ErrorIs(t, err, models.ErrEmptyGeneration)

	_, err = convertGenerateResponse(vertexGenerateResponse{PromptFeedback: &vertexPromptFeedback{BlockReason: "OTHER"}}, "m")
	require.ErrorContains(t, err, "blocked")
}

func TestHealthCheck(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Error(t, adapter.HealthCheck(context.Background()))

	ok := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	require.NoError(t, ok.HealthCheck(context.Background()))
}
