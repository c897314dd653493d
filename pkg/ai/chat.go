package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Wire shapes shared by the OpenAI-compatible chat providers (LM Studio,
// DeepSeek, OpenRouter). Each adapter still owns its base URL, auth, and any
// extra headers.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// tokens prefers the aggregate count and falls back to summing the split
// fields, since providers report one or the other.
func (u chatUsage) tokens() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage chatUsage `json:"usage"`
}

// doChat posts a chat completion request and normalizes the response. headers
// is applied after Content-Type so adapters can add auth and identity headers.
func doChat(ctx context.Context, hc *http.Client, provider, url, model string, req GenerateRequest, headers map[string]string) (GenerateResponse, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, unavailableError(provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, unavailableError(provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GenerateResponse{}, statusError(provider, resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return GenerateResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return GenerateResponse{}, fmt.Errorf("%s returned no choices", provider)
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}

	return GenerateResponse{
		Content:    parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.tokens(),
		Model:      respModel,
		Provider:   provider,
		Elapsed:    time.Since(start),
	}, nil
}

// fetchModelIDs lists models from an OpenAI-style /models endpoint, which
// reports either {"data":[{"id":...}]} or {"models":[{"name"|"id":...}]}.
func fetchModelIDs(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, unavailableError(provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailableError(provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(provider, resp.StatusCode, body)
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Models []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	names := make([]string, 0, len(parsed.Data)+len(parsed.Models))
	for _, entry := range parsed.Data {
		if entry.ID != "" {
			names = append(names, entry.ID)
		}
	}
	for _, entry := range parsed.Models {
		switch {
		case entry.Name != "":
			names = append(names, entry.Name)
		case entry.ID != "":
			names = append(names, entry.ID)
		}
	}
	return names, nil
}
