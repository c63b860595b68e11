package generativeAI

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

var _ LLMClient = (*GeminiClient)(nil)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client. baseURL overrides the API
// endpoint and is normally empty.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewGeminiClient")
	defer span.End()

	if model == "" {
		model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Provider() string { return "gemini" }
func (c *GeminiClient) Model() string    { return c.model }

func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GeminiClient.Complete", trace.WithAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt.length", len(req.Prompt)),
	))
	defer span.End()

	start := time.Now()
	gcfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		gcfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gcfg)
	if err != nil {
		recordCall(ctx, c.Provider(), start, nil, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		recordCall(ctx, c.Provider(), start, nil, ErrEmptyCompletion)
		span.SetStatus(codes.Error, "empty completion")
		return nil, ErrEmptyCompletion
	}

	out := &Completion{Text: text, Model: c.model, Latency: time.Since(start)}
	if u := result.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	recordCall(ctx, c.Provider(), start, out, nil)
	span.SetStatus(codes.Ok, "")
	return out, nil
}
