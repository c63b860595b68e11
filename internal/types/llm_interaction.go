package types

import (
	"time"

	"github.com/google/uuid"
)

// LlmInteraction records one language-model call made while generating a plan.
type LlmInteraction struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Prompt           string    `json:"prompt"`
	ResponseText     string    `json:"response_text"`
	ModelUsed        string    `json:"model_used"`
	Provider         string    `json:"provider"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LatencyMs        int       `json:"latency_ms"`
	Destination      string    `json:"destination"`
	CreatedAt        time.Time `json:"created_at"`
}
