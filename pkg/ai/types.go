package ai

import (
	"context"
	"time"
)

// Provider identifiers accepted by Config.Provider.
const (
	ProviderOllama     = "ollama"
	ProviderLMStudio   = "lmstudio"
	ProviderOpenAI     = "openai"
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
)

// GenerateRequest is the provider-agnostic completion request.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

// GenerateResponse is the normalized completion result.
type GenerateResponse struct {
	Content    string
	TokensUsed int
	Model      string
	Provider   string
	Elapsed    time.Duration
}

// GradeInput carries one subjective answer to be graded.
type GradeInput struct {
	Question      string
	Answer        string
	QuestionType  string
	CorrectAnswer string
	Rubric        string
	MaxPoints     float64
}

// GradeResult is the normalized grading suggestion. PointsEarned is clamped to
// [0, MaxPoints] and Percentage to [0, 100] before it reaches callers.
type GradeResult struct {
	PointsEarned   float64                `json:"points_earned"`
	Percentage     float64                `json:"percentage"`
	Feedback       string                 `json:"feedback"`
	Explanation    string                 `json:"explanation"`
	Improvements   []string               `json:"improvements"`
	Misconceptions []string               `json:"misconceptions"`
	Strengths      []string               `json:"strengths"`
	Confidence     float64                `json:"confidence"`
	Fallback       bool                   `json:"fallback"`
	Raw            map[string]interface{} `json:"raw,omitempty"`
}

// adapter is implemented once per provider. Adapters own every URL path,
// header, and JSON field name; nothing above this layer branches on provider
// identity except to pick the adapter at construction time.
type adapter interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Models(ctx context.Context) ([]string, error)
}
