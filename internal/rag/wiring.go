package rag

import (
	"context"
	"fmt"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/data/redisStore"
	"github.com/akolanti/GradeRAG/internal/data/store"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/embedding/cache"
	"github.com/akolanti/GradeRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/GradeRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/llm/anthropicLLM"
	"github.com/akolanti/GradeRAG/internal/rag/llm/gemini"
	"github.com/akolanti/GradeRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

// Build connects every backend the config names and returns the service plus
// a func that releases them. Redis and, when allowed, Qdrant fall back to the
// in-memory implementations if they cannot be reached.
func Build(ctx context.Context, cfg *config.Config) (Service, func(), error) {
	logger := logger_i.NewLogger("wiring")
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("closing backend failed", "error", err)
			}
		}
	}

	ingestionStore, err := openIngestionStore(ctx, cfg, &closers)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	provider, err := embeddingProvider(ctx, cfg, &closers)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	embedder := embedding.NewManager(provider, embedding.OptionsFromConfig(cfg.Embedding))

	completion, err := completionProvider(ctx, cfg.Completion)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	index, err := openIndex(cfg.VectorDB, embedder.Dimension())
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, index.Close)

	if err := EnsureCollections(ctx, index, embedder.Dimension()); err != nil {
		// ingestion retries collection creation, so startup goes on
		logger.Warn("could not prepare collections", "error", err)
	}

	logger.Info("rag service ready",
		"embeddingMode", embedder.Mode(),
		"embeddingModel", cfg.Embedding.Model,
		"completionModel", completion.ModelName(),
		"vectorStore", cfg.VectorDB.Store,
	)
	return NewService(cfg, index, embedder, completion, ingestionStore), closeAll, nil
}

func openIngestionStore(ctx context.Context, cfg *config.Config, closers *[]func() error) (store.IngestionStore, error) {
	rs, err := redisStore.Open(ctx, cfg.Redis, config.RedisIngestionStore)
	if err != nil {
		if !cfg.Redis.FallbackMemory {
			return nil, fmt.Errorf("ingestion store: %w", err)
		}
		logger_i.NewLogger("wiring").Warn("redis offline, ingestion status is kept in memory", "error", err)
		return store.NewInMemoryIngestionStore(), nil
	}
	*closers = append(*closers, rs.Close)
	return store.NewRedisIngestionStore(rs, config.RedisIngestionStoreTTL), nil
}

// embeddingProvider returns nil in mock mode; the manager then generates
// deterministic vectors itself.
func embeddingProvider(ctx context.Context, cfg *config.Config, closers *[]func() error) (embedding.Provider, error) {
	if cfg.Embedding.Mode == config.EmbeddingModeMock {
		return nil, nil
	}

	var provider embedding.Provider
	var err error
	switch cfg.Embedding.Provider {
	case config.EmbeddingProviderGoogle:
		provider, err = googleEmbedding.New(ctx, cfg.Embedding)
	case config.EmbeddingProviderOpenAI:
		provider, err = openaiEmbedding.New(cfg.Embedding)
	default:
		err = fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Embedding.CacheEnabled {
		return provider, nil
	}
	rs, err := redisStore.Open(ctx, cfg.Redis, config.RedisEmbeddingCache)
	if err != nil {
		logger_i.NewLogger("wiring").Warn("embedding cache disabled, redis offline", "error", err)
		return provider, nil
	}
	*closers = append(*closers, rs.Close)
	return cache.New(provider, rs, cfg.Embedding.CacheTTL), nil
}

func completionProvider(ctx context.Context, cfg config.CompletionConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case config.CompletionProviderOpenAI:
		return openaiLLM.New(cfg)
	case config.CompletionProviderGemini:
		return gemini.New(ctx, cfg)
	case config.CompletionProviderAnthropic:
		return anthropicLLM.New(cfg)
	}
	return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
}

func openIndex(cfg config.VectorDBConfig, dim int) (vectorDB.Index, error) {
	if cfg.Store == config.VectorStoreMemory {
		return memoryDB.New(dim, cfg.UpsertBatchSize), nil
	}
	q, err := qdrantDB.New(cfg, dim)
	if err == nil {
		return q, nil
	}
	if !cfg.FallbackMemory {
		return nil, err
	}
	logger_i.NewLogger("wiring").Error("qdrant offline, vectors are kept in memory and lost on restart", "error", err)
	return memoryDB.New(dim, cfg.UpsertBatchSize), nil
}
