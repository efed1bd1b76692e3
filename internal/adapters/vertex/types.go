package vertex

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type vertexInlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type vertexFileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type vertexPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *vertexInlineData `json:"inlineData,omitempty"`
	FileData   *vertexFileData   `json:"fileData,omitempty"`
}

type vertexContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []vertexPart `json:"parts"`
}

func (c vertexContent) Text() string {
	texts := make([]string, 0, len(c.Parts))
	for _, part := range c.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

type vertexGenerateRequest struct {
	Contents []vertexContent `json:"contents"`
}

type vertexUsageMetadata struct {
	PromptTokens     int32 `json:"promptTokenCount,omitempty"`
	CandidatesTokens int32 `json:"candidatesTokenCount,omitempty"`
	TotalTokens      int32 `json:"totalTokenCount,omitempty"`
}

type vertexCandidate struct {
	Content      vertexContent        `json:"content"`
	FinishReason string               `json:"finishReason"`
	Usage        *vertexUsageMetadata `json:"usageMetadata,omitempty"`
}

type vertexPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type vertexGenerateResponse struct {
	Candidates     []vertexCandidate     `json:"candidates"`
	UsageMetadata  *vertexUsageMetadata  `json:"usageMetadata,omitempty"`
	PromptFeedback *vertexPromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string                `json:"modelVersion,omitempty"`
}

func (r vertexGenerateResponse) Usage() *vertexUsageMetadata {
	if r.UsageMetadata != nil {
		return r.UsageMetadata
	}
	if len(r.Candidates) > 0 {
		return r.Candidates[0].Usage
	}
	return nil
}

func (r vertexGenerateResponse) FirstCandidate() *vertexCandidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

type vertexAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr vertexAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("vertex api error %d (%s): %s", apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
	}
	return fmt.Errorf("vertex api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
