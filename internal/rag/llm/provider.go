package llm

import (
	"context"
	"errors"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// UserPrompt is the single-turn request every grading step sends.
func UserPrompt(system, prompt string, temperature float64, maxTokens int) CompletionRequest {
	return CompletionRequest{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	ModelName() string
}

var ErrEmptyCompletion = errors.New("model returned no text")
