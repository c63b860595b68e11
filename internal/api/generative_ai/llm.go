package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-trip-planner-ai/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner-ai/config"
)

var ErrEmptyCompletion = errors.New("language model returned no content")

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completion is the model's answer plus usage accounting.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
}

// LLMClient is implemented by every supported language-model backend.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Provider() string
	Model() string
}

// NewLLMClient builds the client selected by cfg.Provider.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			logger.Warn("llm.openai.apiKey is empty; completions will fail until it is set")
		}
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, "")
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func recordCall(ctx context.Context, provider string, start time.Time, c *Completion, err error) {
	m := metrics.Get()
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	m.ProviderRequestsTotal.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if c != nil && c.TotalTokens > 0 {
		m.LLMTokensTotal.Add(ctx, int64(c.TotalTokens), metric.WithAttributes(attribute.String("provider", provider)))
	}
}
