package models

import "errors"

type Usage struct {
	PromptTokens     int32 `json:"prompt_tokens"`
	CompletionTokens int32 `json:"completion_tokens"`
	TotalTokens      int32 `json:"total_tokens"`
}

// Generation is the normalized result of a single provider call.
type Generation struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage"`
}

// ErrEmptyGeneration is returned by adapters when the provider answered
// without any text candidate.
var ErrEmptyGeneration = errors.New("provider returned no text")

// ErrUnsupportedPart is returned by adapters for part kinds or media types
// the provider cannot accept.
var ErrUnsupportedPart = errors.New("unsupported content part")
