package vertex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncecere/gemini_relay/internal/models"
)

func buildGenerateContentRequest(parts []models.Part) (vertexGenerateRequest, error) {
	if len(parts) == 0 {
		return vertexGenerateRequest{}, errors.New("vertex: at least one part is required")
	}
	out := make([]vertexPart, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case models.PartText:
			out = append(out, vertexPart{Text: part.Text})
		case models.PartInline:
			if len(part.Data) == 0 {
				return vertexGenerateRequest{}, errors.New("vertex: empty inline payload")
			}
			out = append(out, vertexPart{InlineData: &vertexInlineData{MimeType: part.MediaType(), Data: part.Data}})
		case models.PartFileRef:
			if !strings.HasPrefix(part.URI, "gs://") {
				return vertexGenerateRequest{}, fmt.Errorf("vertex: %w: file uri %q is not a gs:// object", models.ErrUnsupportedPart, part.URI)
			}
			out = append(out, vertexPart{FileData: &vertexFileData{MimeType: part.MediaType(), FileURI: part.URI}})
		default:
			return vertexGenerateRequest{}, fmt.Errorf("vertex: %w: %q", models.ErrUnsupportedPart, part.Kind)
		}
	}
	return vertexGenerateRequest{
		Contents: []vertexContent{{Role: "user", Parts: out}},
	}, nil
}

func convertGenerateResponse(v vertexGenerateResponse, model string) (models.Generation, error) {
	candidate := v.FirstCandidate()
	if candidate == nil {
		if v.PromptFeedback != nil && v.PromptFeedback.BlockReason != "" {
			return models.Generation{}, fmt.Errorf("vertex: prompt blocked: %s", v.PromptFeedback.BlockReason)
		}
		return models.Generation{}, errors.New("vertex response missing candidates")
	}
	text := candidate.Content.Text()
	if strings.TrimSpace(text) == "" {
		return models.Generation{}, fmt.Errorf("vertex: %w (finish reason %s)", models.ErrEmptyGeneration, candidate.FinishReason)
	}
	gen := models.Generation{
		Text:         text,
		Model:        model,
		FinishReason: strings.ToLower(candidate.FinishReason),
	}
	if v.ModelVersion != "" {
		gen.Model = v.ModelVersion
	}
	if usage := v.Usage(); usage != nil {
		gen.Usage = models.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CandidatesTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}
	return gen, nil
}
