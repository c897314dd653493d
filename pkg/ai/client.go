package ai

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI provider requests",
	}, []string{"provider", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI provider requests",
	}, []string{"provider", "operation"})

	aiFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "grade_fallbacks_total",
		Help:      "Number of grading calls that fell back to the zero-credit default",
	}, []string{"provider"})
)

// Config describes one AI client instance. Clients are plain values built from
// this struct and passed by the caller; there is no package-level singleton,
// and concurrent graders each construct their own client.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	AppReferer  string
	AppTitle    string
	MaxTokens   int
	Temperature float32
	// RequestTimeout bounds a whole call; local model servers are slow, so the
	// default is minutes-scale.
	RequestTimeout time.Duration
	// ConnectTimeout bounds dialing only.
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// Client exposes provider-agnostic AI operations over a single adapter chosen
// at construction time. Callers must Close the client when done with it to
// release the underlying transport.
type Client struct {
	adapter   adapter
	transport *http.Transport
	cfg       Config
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewClient validates the configuration and selects the provider adapter.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ai: model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Minute
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxIdleConns:        8,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
	}
	hc := &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}

	var chosen adapter
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOllama, "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		chosen = newOllamaAdapter(baseURL, cfg.Model, hc)
	case ProviderLMStudio:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:1234"
		}
		chosen = newLMStudioAdapter(baseURL, cfg.Model, hc)
	case ProviderOpenAI:
		chosen = newOpenAIAdapter(cfg.BaseURL, cfg.Model, cfg.APIKey, hc)
	case ProviderDeepSeek:
		chosen = newDeepSeekAdapter(cfg.BaseURL, cfg.Model, cfg.APIKey, hc)
	case ProviderOpenRouter:
		chosen = newOpenRouterAdapter(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.AppReferer, cfg.AppTitle, hc)
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}

	return &Client{
		adapter:   chosen,
		transport: transport,
		cfg:       cfg,
		tracer:    otel.Tracer("github.com/gradeflow/gradeflow-api/pkg/ai"),
		logger:    cfg.Logger.With().Str("component", "ai_client").Str("provider", chosen.Name()).Logger(),
	}, nil
}

// Provider reports the adapter selected at construction.
func (c *Client) Provider() string {
	return c.adapter.Name()
}

// Close releases idle transport connections. The client must not be used
// afterwards.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// Generate runs one completion through the configured provider.
func (c *Client) Generate(parent context.Context, req GenerateRequest) (GenerateResponse, error) {
	ctx, span := c.tracer.Start(parent, "ai.generate", trace.WithAttributes(
		attribute.String("ai.provider", c.adapter.Name()),
		attribute.String("ai.model", c.cfg.Model),
	))
	defer span.End()

	if req.MaxTokens <= 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.cfg.Temperature
	}

	start := time.Now()
	resp, err := c.adapter.Generate(ctx, req)
	aiDuration.WithLabelValues(c.adapter.Name(), "generate").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.adapter.Name(), "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResponse{}, err
	}

	span.SetAttributes(attribute.Int("ai.tokens_used", resp.TokensUsed))
	return resp, nil
}

// GradeAnswer grades one subjective answer. Provider failures propagate as
// errors, but a malformed model response never does: the parser's miss is
// converted into a zero-credit fallback so one hallucinated reply cannot block
// a submission.
func (c *Client) GradeAnswer(parent context.Context, input GradeInput) (GradeResult, error) {
	ctx, span := c.tracer.Start(parent, "ai.grade_answer", trace.WithAttributes(
		attribute.String("ai.provider", c.adapter.Name()),
		attribute.String("ai.question_type", input.QuestionType),
	))
	defer span.End()

	resp, err := c.Generate(ctx, GenerateRequest{
		Prompt:       buildGradingPrompt(input),
		SystemPrompt: gradingSystemPrompt(),
		Temperature:  0.2,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, err
	}

	payload, ok := Parse(resp.Content)
	if ok {
		payload = normalizeKeys(payload)
		ok = validGradePayload(payload)
	}
	if !ok {
		aiFallbacks.WithLabelValues(c.adapter.Name()).Inc()
		c.logger.Warn().
			Str("question_type", input.QuestionType).
			Int("content_length", len(resp.Content)).
			Msg("unparseable grading response, using zero-credit fallback")
		return fallbackGrade(), nil
	}

	return normalizeGrade(payload, input.MaxPoints), nil
}

// Models lists the models offered by the configured provider.
func (c *Client) Models(parent context.Context) ([]string, error) {
	ctx, span := c.tracer.Start(parent, "ai.models", trace.WithAttributes(
		attribute.String("ai.provider", c.adapter.Name()),
	))
	defer span.End()

	start := time.Now()
	names, err := c.adapter.Models(ctx)
	aiDuration.WithLabelValues(c.adapter.Name(), "models").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.adapter.Name(), "models").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return names, nil
}

func normalizeKeys(payload map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return normalized
}

// fallbackGrade is the zero-credit default used when the model's reply cannot
// be repaired into a grade. It is flagged so callers can route the question to
// manual review.
func fallbackGrade() GradeResult {
	return GradeResult{
		PointsEarned: 0,
		Percentage:   0,
		Feedback:     "The answer could not be graded automatically. A teacher will review it.",
		Confidence:   0,
		Fallback:     true,
	}
}

func normalizeGrade(payload map[string]interface{}, maxPoints float64) GradeResult {
	result := GradeResult{
		PointsEarned:   floatField(payload, "points_earned"),
		Percentage:     floatField(payload, "percentage"),
		Feedback:       stringField(payload, "feedback"),
		Explanation:    stringField(payload, "explanation"),
		Improvements:   stringSliceField(payload, "improvements"),
		Misconceptions: stringSliceField(payload, "misconceptions"),
		Strengths:      stringSliceField(payload, "strengths"),
		Raw:            payload,
	}

	result.PointsEarned = clamp(result.PointsEarned, 0, maxPoints)
	if result.Percentage == 0 && maxPoints > 0 {
		result.Percentage = result.PointsEarned / maxPoints * 100
	}
	result.Percentage = clamp(result.Percentage, 0, 100)
	result.Confidence = math.Round(result.Percentage) / 100

	return result
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func floatField(payload map[string]interface{}, key string) float64 {
	if value, ok := payload[key].(float64); ok {
		return value
	}
	return 0
}

func stringField(payload map[string]interface{}, key string) string {
	if value, ok := payload[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func stringSliceField(payload map[string]interface{}, key string) []string {
	raw, ok := payload[key].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		if text, ok := entry.(string); ok && text != "" {
			values = append(values, text)
		}
	}
	return values
}
