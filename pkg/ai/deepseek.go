package ai

import (
	"context"
	"net/http"
	"strings"
)

// deepSeekAdapter speaks the OpenAI-compatible chat protocol with Bearer
// authentication. DeepSeek exposes no model listing endpoint, so Models is a
// permanent Unsupported error rather than a transient failure.
type deepSeekAdapter struct {
	baseURL string
	model   string
	apiKey  string
	hc      *http.Client
}

func newDeepSeekAdapter(baseURL, model, apiKey string, hc *http.Client) *deepSeekAdapter {
	if baseURL == "" {
		baseURL = "https://api.deepseek.com"
	}
	return &deepSeekAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		hc:      hc,
	}
}

func (a *deepSeekAdapter) Name() string { return ProviderDeepSeek }

func (a *deepSeekAdapter) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if a.apiKey == "" {
		return GenerateResponse{}, &ProviderError{
			Kind:     KindUnauthenticated,
			Provider: ProviderDeepSeek,
			Message:  "api key is required",
		}
	}
	headers := map[string]string{"Authorization": "Bearer " + a.apiKey}
	return doChat(ctx, a.hc, ProviderDeepSeek, a.baseURL+"/chat/completions", a.model, req, headers)
}

func (a *deepSeekAdapter) Models(ctx context.Context) ([]string, error) {
	return nil, unsupportedError(ProviderDeepSeek, "model listing is not supported")
}
