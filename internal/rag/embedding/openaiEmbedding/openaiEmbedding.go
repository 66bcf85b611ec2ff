package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/customHttpClient"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// New talks to POST /embeddings on OpenAI or any compatible endpoint set by BaseURL.
func New(cfg config.EmbeddingConfig) (embedding.Provider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai embedding: OPENAI_API_KEY is not set")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(customHttpClient.Shared),
		option.WithMaxRetries(0), // the manager retries
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI embedding client created", "model", cfg.Model)
	return &client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.model),
	}
	// only the text-embedding-3 family accepts a reduced dimension
	if strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting embedding from OpenAI", "error", err)
		return nil, classify(err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai embedding: empty response")
	}

	values := resp.Data[0].Embedding
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}
	return vec, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &retry.StatusError{Code: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("openai embedding: %w", err)
}
