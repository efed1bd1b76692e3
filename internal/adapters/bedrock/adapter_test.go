package bedrock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/gemini_relay/internal/adapters/anthropic"
	"github.com/ncecere/gemini_relay/internal/models"
)

func TestBuildMessagesBody(t *testing.T) {
	body, err := buildMessagesBody(defaultAnthropicVersion, 512, []models.Part{
		models.TextPart("Describe this uploaded image."),
		models.InlinePart([]byte{0xff, 0xd8, 0xff}, "image/jpeg", "cat.jpg"),
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	require.NotContains(t, raw, "model")

	var req anthropic.Request
	require.NoError(t, json.Unmarshal(body, &req))
	require.Equal(t, defaultAnthropicVersion, req.AnthropicVersion)
	require.Equal(t, int32(512), req.MaxTokens)
	require.Len(t, req.Messages, 1)
	require.Equal(t, "user", req.Messages[0].Role)

	content := req.Messages[0].Content
	require.Len(t, content, 2)
	require.Equal(t, "text", content[0].Type)
	require.Equal(t, "image", content[1].Type)
	require.Equal(t, "/9j/", content[1].Source.Data)
}

func TestBuildMessagesBodyRejectsAudio(t *testing.T) {
	_, err := buildMessagesBody(defaultAnthropicVersion, 512, []models.Part{
		models.TextPart("Describe this uploaded audio."),
		models.InlinePart([]byte("ID3"), "audio/mpeg", "a.mp3"),
	})
	require.ErrorIs(t, err, models.ErrUnsupportedPart)
	require.Contains(t, err.Error(), "bedrock")
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(context.Background(), Options{ModelID: "anthropic.claude-3-haiku-20240307-v1:0"})
	require.ErrorContains(t, err, "region")

	_, err = New(context.Background(), Options{Region: "us-east-1"})
	require.ErrorContains(t, err, "model id")
}

func TestNewAppliesDefaults(t *testing.T) {
	a, err := New(context.Background(), Options{
		Region:          "us-east-1",
		ModelID:         "anthropic.claude-3-haiku-20240307-v1:0",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, defaultAnthropicVersion, a.opts.AnthropicVersion)
	require.Equal(t, int32(1024), a.opts.DefaultMaxTokens)
}
