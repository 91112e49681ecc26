package ai

import (
	"context"
	"errors"
	"strings"
)

// Runtime is implemented by the LLM backends the report writer can call.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by GetRuntime.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// ErrEmptyResponse is returned when a runtime answers without any content.
var ErrEmptyResponse = errors.New("empty response from model")

// Content returns the trimmed text of the first choice.
func (r *GenerateResponse) Content() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(r.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
