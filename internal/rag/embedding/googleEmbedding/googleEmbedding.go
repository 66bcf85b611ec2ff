package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/customHttpClient"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google embedding: GOOGLE_API_KEY is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  customHttpClient.Shared,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google Embedding client: %w", err)
	}

	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", cfg.Model)
	return &client{
		genAi:     c,
		model:     cfg.Model,
		dimension: int32(cfg.Dimension),
		logger:    logger,
	}, nil
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)

	dim := c.dimension
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, classify(err, log)
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("google embedding: empty response")
	}
	return result.Embeddings[0].Values, nil
}

func classify(err error, log *logger_i.Logger) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		if apiErr.Code == http.StatusTooManyRequests {
			log.Error("Rate limit hit! ", "error", err)
		}
		return &retry.StatusError{Code: apiErr.Code, Err: err}
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Error("Rate limit hit! ", "error", err)
		return &retry.StatusError{Code: http.StatusTooManyRequests, Err: err}
	}
	return fmt.Errorf("google embedding: %w", err)
}
