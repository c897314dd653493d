package ai

import (
	"context"
	"net/http"
	"strings"
)

// lmStudioAdapter targets a local LM Studio server, which speaks the
// OpenAI-compatible chat protocol without authentication.
type lmStudioAdapter struct {
	baseURL string
	model   string
	hc      *http.Client
}

func newLMStudioAdapter(baseURL, model string, hc *http.Client) *lmStudioAdapter {
	return &lmStudioAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		hc:      hc,
	}
}

func (a *lmStudioAdapter) Name() string { return ProviderLMStudio }

func (a *lmStudioAdapter) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	return doChat(ctx, a.hc, ProviderLMStudio, a.baseURL+"/v1/chat/completions", a.model, req, nil)
}

func (a *lmStudioAdapter) Models(ctx context.Context) ([]string, error) {
	return fetchModelIDs(ctx, a.hc, ProviderLMStudio, a.baseURL+"/v1/models", nil)
}
