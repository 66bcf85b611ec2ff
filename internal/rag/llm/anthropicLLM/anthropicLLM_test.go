package anthropicLLM

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_JoinsTextBlocks(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
			"content":[{"type":"text","text":"Key point 1 complete.\n"},{"type":"text","text":"Total score: 90"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer srv.Close()

	p, err := New(config.CompletionConfig{APIKey: "sk-ant", BaseURL: srv.URL, Model: "claude-sonnet-4-5"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), llm.UserPrompt("you grade", "grade this", 0.2, 500))
	require.NoError(t, err)
	assert.Equal(t, "Key point 1 complete.\nTotal score: 90", out)

	assert.EqualValues(t, 500, body["max_tokens"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "you grade", system[0].(map[string]any)["text"])
}

func TestComplete_OverloadedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	p, err := New(config.CompletionConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.UserPrompt("", "x", 0, 10))
	require.Error(t, err)
	assert.True(t, retry.Retryable(err))
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(config.CompletionConfig{Model: "m"})
	assert.Error(t, err)
}
