package ai

import (
	"context"
	"net/http"
	"strings"
)

// openRouterAdapter speaks the OpenAI-compatible chat protocol and adds the
// app-identity headers OpenRouter uses for attribution. Error mapping per
// status code lives in statusError; the body's embedded error detail is
// surfaced when present.
type openRouterAdapter struct {
	baseURL  string
	model    string
	apiKey   string
	referer  string
	appTitle string
	hc       *http.Client
}

func newOpenRouterAdapter(baseURL, model, apiKey, referer, appTitle string, hc *http.Client) *openRouterAdapter {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &openRouterAdapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		apiKey:   apiKey,
		referer:  referer,
		appTitle: appTitle,
		hc:       hc,
	}
}

func (a *openRouterAdapter) Name() string { return ProviderOpenRouter }

func (a *openRouterAdapter) headers() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	}
	if a.referer != "" {
		headers["HTTP-Referer"] = a.referer
	}
	if a.appTitle != "" {
		headers["X-Title"] = a.appTitle
	}
	return headers
}

func (a *openRouterAdapter) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if a.apiKey == "" {
		return GenerateResponse{}, &ProviderError{
			Kind:     KindUnauthenticated,
			Provider: ProviderOpenRouter,
			Message:  "api key is required",
		}
	}
	return doChat(ctx, a.hc, ProviderOpenRouter, a.baseURL+"/chat/completions", a.model, req, a.headers())
}

func (a *openRouterAdapter) Models(ctx context.Context) ([]string, error) {
	if a.apiKey == "" {
		return nil, &ProviderError{
			Kind:     KindUnauthenticated,
			Provider: ProviderOpenRouter,
			Message:  "api key is required",
		}
	}
	return fetchModelIDs(ctx, a.hc, ProviderOpenRouter, a.baseURL+"/models", a.headers())
}
