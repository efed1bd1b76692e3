package anthropic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncecere/gemini_relay/internal/models"
)

// Request is the Messages API body. Bedrock sets AnthropicVersion in the
// body and leaves Model empty; the direct API does the opposite.
type Request struct {
	Model            string    `json:"model,omitempty"`
	AnthropicVersion string    `json:"anthropic_version,omitempty"`
	Messages         []Message `json:"messages"`
	MaxTokens        int32     `json:"max_tokens"`
}

type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	Source *Source `json:"source,omitempty"`
}

type Source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type Usage struct {
	InputTokens  int32 `json:"input_tokens"`
	OutputTokens int32 `json:"output_tokens"`
}

type Response struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Role       string    `json:"role"`
	Model      string    `json:"model"`
	Content    []Content `json:"content"`
	StopReason string    `json:"stop_reason"`
	Usage      Usage     `json:"usage"`
}

func (r Response) JoinText() string {
	texts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		if c.Type == "text" && c.Text != "" {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n")
}

var imageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// UserMessage turns parts into a single user turn. label prefixes errors
// with the calling provider name.
func UserMessage(label string, parts []models.Part) (Message, error) {
	if len(parts) == 0 {
		return Message{}, errors.New("at least one part is required")
	}
	content := make([]Content, 0, len(parts))
	for _, part := range parts {
		block, err := ConvertPart(label, part)
		if err != nil {
			return Message{}, err
		}
		content = append(content, block)
	}
	return Message{Role: "user", Content: content}, nil
}

// ConvertPart maps text, images, PDFs and text documents. Audio and file
// references are unsupported.
func ConvertPart(label string, part models.Part) (Content, error) {
	switch part.Kind {
	case models.PartText:
		return Content{Type: "text", Text: part.Text}, nil
	case models.PartInline:
	default:
		return Content{}, fmt.Errorf("%s: %w: %q", label, models.ErrUnsupportedPart, part.Kind)
	}

	mediaType := part.MediaType()
	switch {
	case part.IsImage():
		if _, ok := imageTypes[mediaType]; !ok {
			return Content{}, fmt.Errorf("%s: %w: image type %s", label, models.ErrUnsupportedPart, mediaType)
		}
		return Content{
			Type:   "image",
			Source: &Source{Type: "base64", MediaType: mediaType, Data: part.Base64()},
		}, nil
	case mediaType == "application/pdf":
		return Content{
			Type:   "document",
			Source: &Source{Type: "base64", MediaType: mediaType, Data: part.Base64()},
		}, nil
	case strings.HasPrefix(mediaType, "text/"):
		return Content{
			Type:   "document",
			Source: &Source{Type: "text", MediaType: "text/plain", Data: string(part.Data)},
		}, nil
	default:
		return Content{}, fmt.Errorf("%s: %w: %s", label, models.ErrUnsupportedPart, mediaType)
	}
}

// ConvertResponse normalizes a Messages API response. fallbackModel is used
// when the response omits the model.
func ConvertResponse(label string, parsed Response, fallbackModel string) (models.Generation, error) {
	text := parsed.JoinText()
	if strings.TrimSpace(text) == "" {
		return models.Generation{}, fmt.Errorf("%s: %w (stop reason %s)", label, models.ErrEmptyGeneration, parsed.StopReason)
	}
	model := parsed.Model
	if model == "" {
		model = fallbackModel
	}
	return models.Generation{
		Text:         text,
		Model:        model,
		FinishReason: MapStopReason(parsed.StopReason),
		Usage: models.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func MapStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence", "":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return reason
	}
}
