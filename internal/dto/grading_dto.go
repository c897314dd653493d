package dto

// GradeSubmissionRequest grades a whole submission directly, bypassing
// per-question detail.
type GradeSubmissionRequest struct {
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback string  `json:"feedback"`
	GradedBy uint    `json:"graded_by"`
}

// GradeResponseRequest grades a single question response.
type GradeResponseRequest struct {
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback string  `json:"feedback"`
	GradedBy uint    `json:"graded_by"`
}

// ModelListResponse carries the model names offered by an AI provider.
type ModelListResponse struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
	CacheHit bool     `json:"cache_hit,omitempty"`
}
