package embedding

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
)

type MockProvider struct {
	OnEmbedText func(ctx context.Context, text string) ([]float32, error)
	calls       atomic.Int32
}

func (m *MockProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	return m.OnEmbedText(ctx, text)
}

func (m *MockProvider) ModelName() string { return "test-model" }

const dim = 8

func testOptions() Options {
	return Options{
		Mode:      config.EmbeddingModeReal,
		Dimension: dim,
		Timeout:   time.Second,
		Retries:   1,
		Backoff:   time.Millisecond,
	}
}

func ones() []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = 1
	}
	return v
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func TestBatchEmbedding_KeepsLengthAndOrder(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		v := make([]float32, dim)
		v[0] = float32(len(text))
		return v, nil
	}}
	m := NewManager(p, testOptions())

	texts := []string{"a", "bb", "ccc"}
	batch, err := m.BatchEmbedding(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Vectors) != len(texts) {
		t.Fatalf("got %d vectors for %d texts", len(batch.Vectors), len(texts))
	}
	for i, v := range batch.Vectors {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d out of order", i)
		}
	}
	if batch.Failed != 0 || batch.UsedFallback {
		t.Errorf("unexpected degraded batch: %+v", batch)
	}
}

func TestBatchEmbedding_PartialFailureLeavesPlaceholder(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, &retry.StatusError{Code: http.StatusBadRequest, Err: errors.New("rejected")}
		}
		return ones(), nil
	}}
	m := NewManager(p, testOptions())

	batch, err := m.BatchEmbedding(context.Background(), []string{"good", "bad", "", "fine"})
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Vectors) != 4 {
		t.Fatalf("got %d vectors", len(batch.Vectors))
	}
	if batch.Failed != 2 || batch.UsedFallback {
		t.Errorf("Failed=%d UsedFallback=%v, want 2 and false", batch.Failed, batch.UsedFallback)
	}
	if !isZero(batch.Vectors[1]) || !isZero(batch.Vectors[2]) || len(batch.Vectors[1]) != dim {
		t.Error("failed items should be zero vectors of full dimension")
	}
	if isZero(batch.Vectors[0]) || isZero(batch.Vectors[3]) {
		t.Error("successful items should keep their vectors")
	}
}

func TestBatchEmbedding_ProviderDownUsesDeterministicFallback(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		return nil, &retry.StatusError{Code: http.StatusServiceUnavailable, Err: errors.New("down")}
	}}
	m := NewManager(p, testOptions())

	texts := []string{"one", "two", "three"}
	batch, err := m.BatchEmbedding(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if !batch.UsedFallback || batch.Failed != 0 {
		t.Fatalf("expected full fallback, got %+v", batch)
	}
	if len(batch.Vectors) != len(texts) {
		t.Fatalf("got %d vectors for %d texts", len(batch.Vectors), len(texts))
	}
	for i, text := range texts {
		want := DeterministicVector(text, dim)
		for j := range want {
			if batch.Vectors[i][j] != want[j] {
				t.Fatalf("vector %d is not the deterministic vector", i)
			}
		}
	}
	// one attempt plus one retry per text
	if got := p.calls.Load(); got != 6 {
		t.Errorf("provider called %d times, want 6", got)
	}
}

func TestGetEmbedding_RetriesTransientError(t *testing.T) {
	p := &MockProvider{}
	p.OnEmbedText = func(ctx context.Context, text string) ([]float32, error) {
		if p.calls.Load() == 1 {
			return nil, &retry.StatusError{Code: http.StatusTooManyRequests, Err: errors.New("slow down")}
		}
		return ones(), nil
	}
	m := NewManager(p, testOptions())

	vec, err := m.GetEmbedding(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != dim || p.calls.Load() != 2 {
		t.Errorf("got %d dims after %d calls", len(vec), p.calls.Load())
	}
}

func TestGetEmbedding_DimensionMismatchIsNotRetried(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		return make([]float32, dim+1), nil
	}}
	m := NewManager(p, testOptions())

	if _, err := m.GetEmbedding(context.Background(), "query"); err == nil {
		t.Fatal("expected a dimension error")
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestGetEmbedding_EmptyText(t *testing.T) {
	m := NewManager(&MockProvider{}, testOptions())
	if _, err := m.GetEmbedding(context.Background(), "  "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("got %v, want ErrEmptyText", err)
	}
}

func TestManager_MockModeIgnoresProvider(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		t.Fatal("provider must not be called in mock mode")
		return nil, nil
	}}
	opts := testOptions()
	opts.Mode = config.EmbeddingModeMock
	m := NewManager(p, opts)

	batch, err := m.BatchEmbedding(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Mode() != config.EmbeddingModeMock || batch.UsedFallback || batch.Failed != 0 {
		t.Errorf("unexpected mock batch %+v", batch)
	}
}

func TestBatchEmbedding_WorkerPoolKeepsOrder(t *testing.T) {
	p := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		return DeterministicVector(text, dim), nil
	}}
	opts := testOptions()
	opts.Workers = 4
	m := NewManager(p, opts)

	texts := []string{"a", "b", "c", "d", "e", "f", "g"}
	batch, err := m.BatchEmbedding(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range texts {
		if batch.Vectors[i][0] != DeterministicVector(text, dim)[0] {
			t.Errorf("vector %d belongs to another text", i)
		}
	}
}

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("photosynthesis", 64)
	b := DeterministicVector("photosynthesis", 64)
	c := DeterministicVector("respiration", 64)

	var norm float64
	same, differ := true, false
	for i := range a {
		norm += float64(a[i]) * float64(a[i])
		same = same && a[i] == b[i]
		differ = differ || a[i] != c[i]
	}
	if !same {
		t.Error("same text gave different vectors")
	}
	if !differ {
		t.Error("different texts gave the same vector")
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("vector norm %f, want 1", norm)
	}
}
