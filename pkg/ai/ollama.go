package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaAdapter talks to a local Ollama server using its single-shot generate
// endpoint. No auth; token accounting comes from the server-reported prompt
// and eval counts.
type ollamaAdapter struct {
	baseURL string
	model   string
	hc      *http.Client
}

func newOllamaAdapter(baseURL, model string, hc *http.Client) *ollamaAdapter {
	return &ollamaAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		hc:      hc,
	}
}

func (a *ollamaAdapter) Name() string { return ProviderOllama }

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (a *ollamaAdapter) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:  a.model,
		Prompt: req.Prompt,
		Stream: false,
		System: req.SystemPrompt,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.hc.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, unavailableError(ProviderOllama, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, unavailableError(ProviderOllama, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GenerateResponse{}, statusError(ProviderOllama, resp.StatusCode, body)
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return GenerateResponse{}, fmt.Errorf("decode generate response: %w", err)
	}

	model := parsed.Model
	if model == "" {
		model = a.model
	}

	return GenerateResponse{
		Content:    parsed.Response,
		TokensUsed: parsed.PromptEvalCount + parsed.EvalCount,
		Model:      model,
		Provider:   ProviderOllama,
		Elapsed:    time.Since(start),
	}, nil
}

func (a *ollamaAdapter) Models(ctx context.Context) ([]string, error) {
	return fetchModelIDs(ctx, a.hc, ProviderOllama, a.baseURL+"/api/tags", nil)
}
