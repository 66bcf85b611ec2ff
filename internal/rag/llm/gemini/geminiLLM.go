package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/customHttpClient"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func New(ctx context.Context, cfg config.CompletionConfig) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: GOOGLE_API_KEY is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  customHttpClient.Shared,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", cfg.Model)
	return &llmClient{client: c, modelName: cfg.Model, logger: logger}, nil
}

func (c *llmClient) ModelName() string {
	return c.modelName
}

func (c *llmClient) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	log := c.logger.WithTrace(ctx)

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		log.Error("Gemini generate failed", "error", err)
		return "", classify(err)
	}
	if result == nil {
		return "", llm.ErrEmptyCompletion
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

// classify keeps the http status of a genai failure so a bad key or request
// is not retried.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &retry.StatusError{Code: apiErr.Code, Err: err}
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return &retry.StatusError{Code: http.StatusTooManyRequests, Err: err}
	}
	return fmt.Errorf("gemini: %w", err)
}
