package dto

import (
	"time"

	"github.com/gradeflow/gradeflow-api/internal/models"
)

// AnswerInput is one answered question inside a submit request.
type AnswerInput struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}

// SubmitRequest is the payload for handing in an assessment.
type SubmitRequest struct {
	AssessmentID uint          `json:"assessment_id" validate:"required,gt=0"`
	StudentID    uint          `json:"student_id" validate:"required,gt=0"`
	Answers      []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssessmentID *uint   `query:"assessment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted ai_graded graded"`
	NeedsReview  *bool   `query:"needs_review"`
}

// ResponseView serializes one graded question response.
type ResponseView struct {
	ID                  uint       `json:"id"`
	QuestionID          uint       `json:"question_id"`
	Answer              string     `json:"answer"`
	Score               *float64   `json:"score"`
	IsCorrect           *bool      `json:"is_correct"`
	Feedback            string     `json:"feedback"`
	AISuggestedScore    *float64   `json:"ai_suggested_score"`
	AISuggestedFeedback string     `json:"ai_suggested_feedback"`
	AIConfidence        *float64   `json:"ai_confidence"`
	TeacherOverride     bool       `json:"teacher_override"`
	GradedAt            *time.Time `json:"graded_at"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint           `json:"id"`
	AssessmentID    uint           `json:"assessment_id"`
	StudentID       uint           `json:"student_id"`
	Score           *float64       `json:"score"`
	AIDraftScore    *float64       `json:"ai_draft_score"`
	TotalPoints     float64        `json:"total_points"`
	Status          string         `json:"status"`
	Feedback        string         `json:"feedback,omitempty"`
	NeedsReview     bool           `json:"needs_review"`
	TeacherApproved bool           `json:"teacher_approved"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	GradedAt        *time.Time     `json:"graded_at"`
	Responses       []ResponseView `json:"responses,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		AssessmentID:    model.AssessmentID,
		StudentID:       model.StudentID,
		Score:           model.Score,
		AIDraftScore:    model.AIDraftScore,
		TotalPoints:     model.TotalPoints,
		Status:          model.Status,
		Feedback:        model.Feedback,
		NeedsReview:     model.NeedsReview,
		TeacherApproved: model.TeacherApproved,
		SubmittedAt:     model.SubmittedAt,
		GradedAt:        model.GradedAt,
	}

	for _, entry := range model.Responses {
		response.Responses = append(response.Responses, ResponseView{
			ID:                  entry.ID,
			QuestionID:          entry.QuestionID,
			Answer:              entry.Answer,
			Score:               entry.Score,
			IsCorrect:           entry.IsCorrect,
			Feedback:            entry.Feedback,
			AISuggestedScore:    entry.AISuggestedScore,
			AISuggestedFeedback: entry.AISuggestedFeedback,
			AIConfidence:        entry.AIConfidence,
			TeacherOverride:     entry.TeacherOverride,
			GradedAt:            entry.GradedAt,
		})
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}

	return responses
}
