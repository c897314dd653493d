package dto

import (
	"time"

	"github.com/gradeflow/gradeflow-api/internal/models"
)

// QuestionInput describes one question in an assessment create request.
type QuestionInput struct {
	Type          string  `json:"type" validate:"required,oneof=multiple_choice true_false short_answer long_answer fill_in_blank"`
	Prompt        string  `json:"prompt" validate:"required,min=3"`
	CorrectAnswer string  `json:"correct_answer"`
	Rubric        string  `json:"rubric"`
	Points        float64 `json:"points" validate:"required,gt=0"`
}

// AssessmentCreateRequest is the payload for creating an assessment.
type AssessmentCreateRequest struct {
	Title        string          `json:"title" validate:"required,min=3"`
	Description  string          `json:"description"`
	GradingMode  string          `json:"grading_mode" validate:"required,oneof=ai_automatic ai_assisted manual"`
	PassingScore float64         `json:"passing_score" validate:"gte=0"`
	CreatedBy    uint            `json:"created_by"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// QuestionResponseView serializes a question for API clients.
type QuestionResponseView struct {
	ID       uint    `json:"id"`
	Type     string  `json:"type"`
	Prompt   string  `json:"prompt"`
	Points   float64 `json:"points"`
	Position int     `json:"position"`
}

// AssessmentResponse is returned to API clients when viewing assessments.
type AssessmentResponse struct {
	ID           uint                   `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	GradingMode  string                 `json:"grading_mode"`
	TotalPoints  float64                `json:"total_points"`
	PassingScore float64                `json:"passing_score"`
	Questions    []QuestionResponseView `json:"questions,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewAssessmentResponse converts an Assessment model into a DTO. Correct
// answers and rubrics are intentionally not exposed.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	response := AssessmentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		GradingMode:  model.GradingMode,
		TotalPoints:  model.TotalPoints,
		PassingScore: model.PassingScore,
		CreatedAt:    model.CreatedAt,
	}

	for _, question := range model.Questions {
		response.Questions = append(response.Questions, QuestionResponseView{
			ID:       question.ID,
			Type:     question.Type,
			Prompt:   question.Prompt,
			Points:   question.Points,
			Position: question.Position,
		})
	}

	return response
}

// NewAssessmentResponseSlice converts assessment models into DTOs.
func NewAssessmentResponseSlice(items []models.Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssessmentResponse(item))
	}

	return responses
}
