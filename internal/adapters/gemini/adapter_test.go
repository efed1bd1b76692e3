package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/ncecere/gemini_relay/internal/models"
)

// fakeGemini answers the REST calls the SDK makes and records them as
// "METHOD /path".
type fakeGemini struct {
	mu         sync.Mutex
	calls      []string
	fileStates []string
	generate   func(w http.ResponseWriter, body string)
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	var state string
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1beta/files/") && len(f.fileStates) > 0 {
		state = f.fileStates[0]
		if len(f.fileStates) > 1 {
			f.fileStates = f.fileStates[1:]
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":generateContent"):
		if f.generate != nil {
			f.generate(w, string(body))
			return
		}
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "hi "}, {"text": "there"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`))
	case r.Method == http.MethodPost && r.URL.Path == "/upload/v1beta/files":
		_, _ = w.Write([]byte(`{"file": {"name": "files/abc", "mimeType": "image/png", "state": "PROCESSING"}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/v1beta/files/abc":
		_, _ = w.Write([]byte(`{"name": "files/abc", "uri": "https://x/files/abc", "mimeType": "image/png", "state": "` + state + `"}`))
	case r.Method == http.MethodDelete && r.URL.Path == "/v1beta/files/abc":
		_, _ = w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "not found", "status": "NOT_FOUND"}}`))
	}
}

func (f *fakeGemini) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestAdapter(t *testing.T, fake *fakeGemini) *Adapter {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	adapter, err := New(context.Background(), Options{
		APIKey:       "test-key",
		Model:        "gemini-2.5-flash",
		Endpoint:     srv.URL,
		PollInterval: time.Millisecond,
		Extra:        []option.ClientOption{option.WithHTTPClient(srv.Client())},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestGenerate(t *testing.T) {
	fake := &fakeGemini{}
	var sent string
	fake.generate = func(w http.ResponseWriter, body string) {
		sent = body
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "hi there"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`))
	}
	adapter := newTestAdapter(t, fake)

	gen, err := adapter.Generate(context.Background(), []models.Part{
		models.TextPart("Describe this uploaded image."),
		models.FileRefPart("https://x/files/abc", "image/png", "files/abc"),
	})
	require.NoError(t, err)
	require.Equal(t, "hi there", gen.Text)
	require.Equal(t, "stop", gen.FinishReason)
	require.Equal(t, models.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}, gen.Usage)

	require.Equal(t, []string{"POST /v1beta/models/gemini-2.5-flash:generateContent"}, fake.recorded())
	require.Contains(t, sent, "Describe this uploaded image.")
	require.Contains(t, sent, "https://x/files/abc")
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	fake := &fakeGemini{generate: func(w http.ResponseWriter, _ string) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}}
	adapter := newTestAdapter(t, fake)

	_, err := adapter.Generate(context.Background(), []models.Part{models.TextPart("hello")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key not valid")
}

func TestUploadPollsUntilActive(t *testing.T) {
	fake := &fakeGemini{fileStates: []string{"PROCESSING", "PROCESSING", "ACTIVE"}}
	adapter := newTestAdapter(t, fake)

	part, err := adapter.Upload(context.Background(), "cat.png", "image/png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	require.Equal(t, models.FileRefPart("https://x/files/abc", "image/png", "files/abc"), part)

	require.Equal(t, []string{
		"POST /upload/v1beta/files",
		"GET /v1beta/files/abc",
		"GET /v1beta/files/abc",
		"GET /v1beta/files/abc",
	}, fake.recorded())
}

func TestUploadFailedProcessing(t *testing.T) {
	fake := &fakeGemini{fileStates: []string{"PROCESSING", "FAILED"}}
	adapter := newTestAdapter(t, fake)

	_, err := adapter.Upload(context.Background(), "cat.png", "image/png", strings.NewReader("\x89PNG"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed processing")
}

func TestUploadStopsPollingOnCancel(t *testing.T) {
	fake := &fakeGemini{fileStates: []string{"PROCESSING"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	adapter, err := New(context.Background(), Options{
		APIKey:       "test-key",
		Model:        "gemini-2.5-flash",
		Endpoint:     srv.URL,
		PollInterval: time.Hour,
		Extra:        []option.ClientOption{option.WithHTTPClient(srv.Client())},
	})
	require.NoError(t, err)
	defer adapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = adapter.Upload(ctx, "cat.png", "image/png", strings.NewReader("\x89PNG"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeleteUpload(t *testing.T) {
	fake := &fakeGemini{}
	adapter := newTestAdapter(t, fake)

	err := adapter.DeleteUpload(context.Background(), models.FileRefPart("https://x/files/abc", "image/png", "files/abc"))
	require.NoError(t, err)
	require.Equal(t, []string{"DELETE /v1beta/files/abc"}, fake.recorded())
}
