package openaiLLM

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(t *testing.T, status int, reply string, body *map[string]any) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body != nil {
			_ = json.NewDecoder(r.Body).Decode(body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_SendsPromptAndSampling(t *testing.T) {
	var body map[string]any
	srv := server(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Total score: 72  "}}]}`, &body)

	p, err := New(config.CompletionConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), llm.UserPrompt("you grade", "grade this", 0.2, 2000))
	require.NoError(t, err)
	assert.Equal(t, "Total score: 72", out)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
	assert.EqualValues(t, 2000, body["max_tokens"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestComplete_EmptyChoice(t *testing.T) {
	srv := server(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	p, err := New(config.CompletionConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.UserPrompt("", "x", 0, 10))
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestComplete_AuthErrorIsPermanent(t *testing.T) {
	srv := server(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, nil)
	p, err := New(config.CompletionConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.UserPrompt("", "x", 0, 10))
	var se *retry.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.False(t, retry.Retryable(err))
}
