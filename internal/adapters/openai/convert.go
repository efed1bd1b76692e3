package openai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/ncecere/gemini_relay/internal/models"
)

func buildChatParams(model string, parts []models.Part) (openai.ChatCompletionNewParams, error) {
	if len(parts) == 0 {
		return openai.ChatCompletionNewParams{}, errors.New("openai: at least one part is required")
	}
	content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, part := range parts {
		converted, err := convertPart(part)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		content = append(content, converted)
	}
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(content)},
	}, nil
}

func convertPart(part models.Part) (openai.ChatCompletionContentPartUnionParam, error) {
	switch part.Kind {
	case models.PartText:
		return openai.TextContentPart(part.Text), nil
	case models.PartInline:
		switch {
		case part.IsImage():
			return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: part.DataURL()}), nil
		case part.IsAudio():
			format, ok := audioFormat(part.MediaType())
			if !ok {
				return openai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("openai: %w: audio type %s (only wav and mp3)", models.ErrUnsupportedPart, part.MediaType())
			}
			return openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
				Data:   part.Base64(),
				Format: format,
			}), nil
		default:
			file := openai.ChatCompletionContentPartFileFileParam{FileData: param.NewOpt(part.DataURL())}
			if part.Filename != "" {
				file.Filename = param.NewOpt(part.Filename)
			}
			return openai.FileContentPart(file), nil
		}
	default:
		return openai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("openai: %w: %q", models.ErrUnsupportedPart, part.Kind)
	}
}

func audioFormat(mediaType string) (string, bool) {
	switch mediaType {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return "wav", true
	case "audio/mpeg", "audio/mp3", "audio/mpeg3", "audio/x-mpeg-3":
		return "mp3", true
	}
	return "", false
}

func convertChatResponse(resp openai.ChatCompletion) (models.Generation, error) {
	if len(resp.Choices) == 0 {
		return models.Generation{}, errors.New("openai response missing choices")
	}
	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		if choice.Message.Refusal != "" {
			return models.Generation{}, fmt.Errorf("openai: refused: %s", choice.Message.Refusal)
		}
		return models.Generation{}, fmt.Errorf("openai: %w (finish reason %s)", models.ErrEmptyGeneration, choice.FinishReason)
	}
	usage := models.Usage{
		PromptTokens:     int32(resp.Usage.PromptTokens),
		CompletionTokens: int32(resp.Usage.CompletionTokens),
		TotalTokens:      int32(resp.Usage.TotalTokens),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return models.Generation{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		FinishReason: choice.FinishReason,
		Usage:        usage,
	}, nil
}
