package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	// BatchEmbedding always returns one vector per input, in input order.
	BatchEmbedding(ctx context.Context, texts []string) (Batch, error)
	Dimension() int
	Mode() string
}

// Provider is a single remote (or local) embedding model.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

type Batch struct {
	Vectors [][]float32
	// Failed counts zero-vector placeholders left in Vectors.
	Failed int
	// UsedFallback is set when the provider was unreachable for the whole
	// batch and the vectors came from the deterministic generator.
	UsedFallback bool
}

var ErrEmptyText = errors.New("empty text")

type Options struct {
	Mode           string
	Dimension      int
	Timeout        time.Duration
	Retries        int
	Backoff        time.Duration
	CallsPerSecond float64
	Workers        int
}

func OptionsFromConfig(cfg config.EmbeddingConfig) Options {
	return Options{
		Mode:           cfg.Mode,
		Dimension:      cfg.Dimension,
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		Backoff:        cfg.Backoff,
		CallsPerSecond: cfg.CallsPerSecond,
		Workers:        cfg.Workers,
	}
}

type Manager struct {
	provider Provider
	opts     Options
	policy   retry.Policy
	limiter  *rate.Limiter
	logger   *logger_i.Logger
}

func NewManager(provider Provider, opts Options) *Manager {
	if opts.Mode != config.EmbeddingModeMock {
		opts.Mode = config.EmbeddingModeReal
	}
	if opts.Dimension <= 0 {
		opts.Dimension = config.EmbeddingOutputDimensionality
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.EmbeddingTimeout
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Mode == config.EmbeddingModeMock || provider == nil {
		provider = NewMockProvider(opts.Dimension)
	}

	limit := rate.Inf
	if opts.CallsPerSecond > 0 {
		limit = rate.Limit(opts.CallsPerSecond)
	}

	m := &Manager{
		provider: provider,
		opts:     opts,
		policy:   retry.Policy{Retries: opts.Retries, Backoff: opts.Backoff},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger_i.NewLogger("embedding_manager").With("model", provider.ModelName(), "mode", opts.Mode),
	}
	if opts.Mode == config.EmbeddingModeMock {
		m.logger.Warn("embedding mode is mock, similarity search will not reflect meaning")
	}
	return m
}

func (m *Manager) Dimension() int {
	return m.opts.Dimension
}

func (m *Manager) Mode() string {
	return m.opts.Mode
}

func (m *Manager) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.embedOne(ctx, text)
}

func (m *Manager) BatchEmbedding(ctx context.Context, texts []string) (Batch, error) {
	log := m.logger.WithTrace(ctx)
	batch := Batch{Vectors: make([][]float32, len(texts))}
	if len(texts) == 0 {
		return batch, nil
	}

	failed := make([]bool, len(texts))
	var g errgroup.Group
	g.SetLimit(m.opts.Workers)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := m.embedOne(ctx, text)
			if err != nil {
				log.Warn("embedding failed, using zero placeholder", "index", i, "error", err)
				vec = make([]float32, m.opts.Dimension)
				failed[i] = true
			}
			batch.Vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()

	nonEmpty := 0
	for i, f := range failed {
		if f {
			batch.Failed++
		}
		if strings.TrimSpace(texts[i]) != "" {
			nonEmpty++
		}
	}

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	// every call failed: treat the provider as down rather than storing zeros
	if nonEmpty > 0 && batch.Failed == len(texts) && m.opts.Mode == config.EmbeddingModeReal {
		log.Error("embedding provider unreachable for whole batch, using deterministic vectors", "texts", len(texts))
		batch.Failed = 0
		for i, text := range texts {
			if strings.TrimSpace(text) == "" {
				batch.Failed++
				continue
			}
			batch.Vectors[i] = DeterministicVector(text, m.opts.Dimension)
		}
		batch.UsedFallback = true
		metrics.IncrementEmbeddingFallback()
	}

	if batch.Failed > 0 {
		metrics.AddEmbeddingItemFailures(batch.Failed)
	}
	log.Debug("batch embedded", "texts", len(texts), "failed", batch.Failed, "fallback", batch.UsedFallback)
	return batch, nil
}

func (m *Manager) embedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var vec []float32
	err := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		if err := m.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}

		callCtx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()

		start := time.Now()
		v, err := m.provider.EmbedText(callCtx, text)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			return err
		}
		if err := validate(v, m.opts.Dimension); err != nil {
			return retry.Permanent(err)
		}
		vec = v
		return nil
	})
	return vec, err
}

func validate(v []float32, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("provider returned %d dimensions, want %d", len(v), dim)
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return errors.New("provider returned a non-finite value")
		}
	}
	return nil
}
