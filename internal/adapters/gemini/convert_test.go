package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/gemini_relay/internal/models"
)

func TestToGenaiParts(t *testing.T) {
	parts, err := toGenaiParts([]models.Part{
		models.TextPart("Describe this uploaded image."),
		models.FileRefPart("https://generativelanguage.googleapis.com/v1beta/files/abc", "image/png", "files/abc"),
		models.InlinePart([]byte("RIFF"), "audio/wav; codecs=1", "clip.wav"),
	})
	require.NoError(t, err)
	require.Len(t, parts, 3)
	require.Equal(t, genai.Text("Describe this uploaded image."), parts[0])
	require.Equal(t, genai.FileData{MIMEType: "image/png", URI: "https://generativelanguage.googleapis.com/v1beta/files/abc"}, parts[1])
	require.Equal(t, genai.Blob{MIMEType: "audio/wav", Data: []byte("RIFF")}, parts[2])
}

func TestToGenaiPartsRejectsInvalid(t *testing.T) {
	_, err := toGenaiParts(nil)
	require.Error(t, err)

	_, err = toGenaiParts([]models.Part{models.InlinePart(nil, "application/pdf", "empty.pdf")})
	require.Error(t, err)

	_, err = toGenaiParts([]models.Part{{Kind: "video"}})
	require.ErrorIs(t, err, models.ErrUnsupportedPart)
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Hello "), genai.Text("there!")}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 4, CandidatesTokenCount: 3, TotalTokenCount: 7},
	}

	gen, err := convertResponse(resp, "gemini-2.5-flash")
	require.NoError(t, err)
	require.Equal(t, "Hello there!", gen.Text)
	require.Equal(t, "gemini-2.5-flash", gen.Model)
	require.Equal(t, "stop", gen.FinishReason)
	require.Equal(t, models.Usage{PromptTokens: 4, CompletionTokens: 3, TotalTokens: 7}, gen.Usage)
}

func TestConvertResponseFailures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		wantErr error
		wantMsg string
	}{
		{name: "nil", resp: nil, wantMsg: "missing candidates"},
		{
			name:    "blocked prompt",
			resp:    &genai.GenerateContentResponse{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}},
			wantMsg: "blocked",
		},
		{
			name: "safety stop without text",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			wantErr: models.ErrEmptyGeneration,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := convertResponse(tc.resp, "m")
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				require.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestCheckFileState(t *testing.T) {
	_, err := checkFileState(&genai.File{Name: "files/x", State: genai.FileStateFailed})
	require.Error(t, err)

	_, err = checkFileState(&genai.File{Name: "files/x", State: genai.FileStateActive})
	require.Error(t, err)

	file, err := checkFileState(&genai.File{Name: "files/x", URI: "https://files/x", State: genai.FileStateActive})
	require.NoError(t, err)
	require.Equal(t, "files/x", file.Name)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(context.Background(), Options{Model: "gemini-2.5-flash"})
	require.ErrorContains(t, err, "api key")

	_, err = New(context.Background(), Options{APIKey: "k"})
	require.ErrorContains(t, err, "model")
}

func TestDeleteUploadIgnoresNonReferences(t *testing.T) {
	a := &Adapter{}
	require.NoError(t, a.DeleteUpload(context.Background(), models.InlinePart([]byte("x"), "text/plain", "")))
	require.NoError(t, a.DeleteUpload(context.Background(), models.FileRefPart("gs://b/o", "image/png", "")))
}
