package anthropicLLM

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/customHttpClient"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type llmClient struct {
	api    anthropic.Client
	model  string
	logger *logger_i.Logger
}

func New(cfg config.CompletionConfig) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: ANTHROPIC_API_KEY is not set")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(customHttpClient.Shared),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logger := logger_i.NewLogger("llm_anthropic")
	logger.Info("Anthropic client created", "model", cfg.Model)
	return &llmClient{api: anthropic.NewClient(opts...), model: cfg.Model, logger: logger}, nil
}

func (c *llmClient) ModelName() string {
	return c.model
}

func (c *llmClient) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.ModelMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Anthropic message failed", "error", err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.StatusError{Code: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}
