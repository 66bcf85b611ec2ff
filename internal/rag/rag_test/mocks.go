package rag_test

import (
	"context"
	"errors"

	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB/memoryDB"
)

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, req llm.CompletionRequest) (string, error)
	Requests   []llm.CompletionRequest
}

func (m *MockLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.OnComplete != nil {
		return m.OnComplete(ctx, req)
	}
	return "Mocked grading.\nTotal score: 80/100", nil
}

func (m *MockLLM) ModelName() string { return "mock-llm" }

// MockIndex is the memory index with a switch to make it unreachable.
type MockIndex struct {
	*memoryDB.Store
	Down bool
}

var errIndexDown = errors.New("connection refused")

func (m *MockIndex) ListCollections(ctx context.Context) ([]string, error) {
	if m.Down {
		return nil, errIndexDown
	}
	return m.Store.ListCollections(ctx)
}
