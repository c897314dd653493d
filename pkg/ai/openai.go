package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openAIAdapter wraps the go-openai client. The library already speaks the
// chat wire format; this adapter contributes auth handling and normalization
// of responses and errors into the provider-agnostic shapes.
type openAIAdapter struct {
	client *openai.Client
	model  string
	apiKey string
}

func newOpenAIAdapter(baseURL, model, apiKey string, hc *http.Client) *openAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = hc

	return &openAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

func (a *openAIAdapter) Name() string { return ProviderOpenAI }

func (a *openAIAdapter) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if a.apiKey == "" {
		return GenerateResponse{}, &ProviderError{
			Kind:     KindUnauthenticated,
			Provider: ProviderOpenAI,
			Message:  "api key is required",
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return GenerateResponse{}, normalizeOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, &ProviderError{
			Kind:     KindServerError,
			Provider: ProviderOpenAI,
			Message:  "no choices returned",
		}
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}

	return GenerateResponse{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: tokens,
		Model:      model,
		Provider:   ProviderOpenAI,
		Elapsed:    time.Since(start),
	}, nil
}

func (a *openAIAdapter) Models(ctx context.Context) ([]string, error) {
	if a.apiKey == "" {
		return nil, &ProviderError{
			Kind:     KindUnauthenticated,
			Provider: ProviderOpenAI,
			Message:  "api key is required",
		}
	}

	list, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, normalizeOpenAIError(err)
	}

	names := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		names = append(names, model.ID)
	}
	return names, nil
}

func normalizeOpenAIError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		mapped := statusError(ProviderOpenAI, apiErr.HTTPStatusCode, nil)
		mapped.Message = apiErr.Message
		mapped.Err = err
		return mapped
	}
	return unavailableError(ProviderOpenAI, err)
}
