package generativeAI

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ LLMClient = (*OpenAIClient)(nil)

const defaultOpenAIModel = "gpt-3.5-turbo"

type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a chat-completions client. baseURL may be empty
// for the public API.
func NewOpenAIClient(apiKey, model, baseURL string, opts ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

func (c *OpenAIClient) Provider() string { return "openai" }
func (c *OpenAIClient) Model() string    { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "OpenAIClient.Complete", trace.WithAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt.length", len(req.Prompt)),
	))
	defer span.End()

	start := time.Now()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		recordCall(ctx, c.Provider(), start, nil, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		recordCall(ctx, c.Provider(), start, nil, ErrEmptyCompletion)
		span.SetStatus(codes.Error, "empty completion")
		return nil, ErrEmptyCompletion
	}

	out := &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		Latency:          time.Since(start),
	}
	if out.Model == "" {
		out.Model = c.model
	}
	recordCall(ctx, c.Provider(), start, out, nil)
	span.SetAttributes(attribute.Int("llm.tokens.total", out.TotalTokens))
	span.SetStatus(codes.Ok, "")
	return out, nil
}
