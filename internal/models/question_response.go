package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionResponse is one answered question inside a submission. Score and
// IsCorrect stay nil while the answer awaits AI or manual grading; AI fields
// record the suggestion separately from the final score so a teacher override
// is always visible.
type QuestionResponse struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	SubmissionID        uint              `gorm:"not null;index" json:"submission_id"`
	QuestionID          uint              `gorm:"not null;index" json:"question_id"`
	Answer              string            `gorm:"type:text" json:"answer"`
	Score               *float64          `json:"score"`
	IsCorrect           *bool             `json:"is_correct"`
	Feedback            string            `gorm:"type:text" json:"feedback"`
	AISuggestedScore    *float64          `json:"ai_suggested_score"`
	AISuggestedFeedback string            `gorm:"type:text" json:"ai_suggested_feedback"`
	AIConfidence        *float64          `json:"ai_confidence"`
	AIRaw               datatypes.JSONMap `json:"ai_raw,omitempty"`
	TeacherOverride     bool              `gorm:"not null;default:false" json:"teacher_override"`
	GradedAt            *time.Time        `json:"graded_at"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	Question            Question          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}

// Finalized reports whether the response carries a final score.
func (r QuestionResponse) Finalized() bool {
	return r.Score != nil
}

// HasSuggestion reports whether an AI suggestion is recorded but not yet
// copied into the final score.
func (r QuestionResponse) HasSuggestion() bool {
	return r.AISuggestedScore != nil && r.Score == nil
}
