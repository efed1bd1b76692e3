package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/ncecere/gemini_relay/internal/models"
)

func toGenaiParts(parts []models.Part) ([]genai.Part, error) {
	if len(parts) == 0 {
		return nil, errors.New("gemini: at least one part is required")
	}
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case models.PartText:
			out = append(out, genai.Text(part.Text))
		case models.PartFileRef:
			out = append(out, genai.FileData{MIMEType: part.MediaType(), URI: part.URI})
		case models.PartInline:
			if len(part.Data) == 0 {
				return nil, errors.New("gemini: empty inline payload")
			}
			out = append(out, genai.Blob{MIMEType: part.MediaType(), Data: part.Data})
		default:
			return nil, fmt.Errorf("gemini: %w: %q", models.ErrUnsupportedPart, part.Kind)
		}
	}
	return out, nil
}

func convertResponse(resp *genai.GenerateContentResponse, model string) (models.Generation, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return models.Generation{}, fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return models.Generation{}, errors.New("gemini response missing candidates")
	}
	candidate := resp.Candidates[0]
	var texts []string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok && text != "" {
				texts = append(texts, string(text))
			}
		}
	}
	joined := strings.Join(texts, "")
	if strings.TrimSpace(joined) == "" {
		return models.Generation{}, fmt.Errorf("gemini: %w (finish reason %s)", models.ErrEmptyGeneration, candidate.FinishReason)
	}
	gen := models.Generation{
		Text:         joined,
		Model:        model,
		FinishReason: finishReason(candidate.FinishReason),
	}
	if usage := resp.UsageMetadata; usage != nil {
		gen.Usage = models.Usage{
			PromptTokens:     usage.PromptTokenCount,
			CompletionTokens: usage.CandidatesTokenCount,
			TotalTokens:      usage.TotalTokenCount,
		}
	}
	return gen, nil
}

func finishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	case genai.FinishReasonSafety:
		return "safety"
	case genai.FinishReasonRecitation:
		return "recitation"
	default:
		return "other"
	}
}
