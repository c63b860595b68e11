package generativeAI

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner-ai/config"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo-0125",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "1. Trip Overview\nParis"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", "", srv.URL, option.WithMaxRetries(0))
	assert.Equal(t, "gpt-3.5-turbo", c.Model())

	out, err := c.Complete(context.Background(), CompletionRequest{
		System:      "You are a professional travel planner.",
		Prompt:      "Plan Paris",
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	require.NoError(t, err)

	assert.Equal(t, "1. Trip Overview\nParis", out.Text)
	assert.Equal(t, "gpt-3.5-turbo-0125", out.Model)
	assert.Equal(t, 46, out.TotalTokens)

	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 0.0001)
	assert.EqualValues(t, 2000, got["max_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer srv.Close()

		_, err := NewOpenAIClient("bad", "", srv.URL, option.WithMaxRetries(0)).
			Complete(context.Background(), CompletionRequest{Prompt: "x"})
		assert.Error(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewOpenAIClient("k", "", srv.URL, option.WithMaxRetries(0)).
			Complete(context.Background(), CompletionRequest{Prompt: "x"})
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestGeminiClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "1. Trip Overview"}]}}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 7, "totalTokenCount": 12}
		}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), "test-key", "", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Provider())

	out, err := c.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "Plan Paris", Temperature: 0.7, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "1. Trip Overview", out.Text)
	assert.Equal(t, 12, out.TotalTokens)
}

func TestNewLLMClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.LLMConfig{Provider: "openai"}
	c, err := NewLLMClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider())

	cfg = config.LLMConfig{Provider: "gemini"}
	cfg.Gemini.APIKey = "k"
	c, err = NewLLMClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Provider())

	_, err = NewLLMClient(context.Background(), config.LLMConfig{Provider: "llama"}, logger)
	assert.Error(t, err)
}
