package models

import "time"

// Submission statuses. Submitted and AIGraded are non-terminal; Graded is
// terminal for the standard flow, with single-question re-grade as an explicit
// escape hatch that re-runs aggregation.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusAIGraded  = "ai_graded"
	SubmissionStatusGraded    = "graded"
)

// Submission aggregates the question responses a student handed in for one
// assessment. Score stays nil until every counted question is finalized;
// TotalPoints is a snapshot of the assessment total at submit time.
type Submission struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	AssessmentID    uint               `gorm:"not null;index" json:"assessment_id"`
	StudentID       uint               `gorm:"not null;index" json:"student_id"`
	Score           *float64           `json:"score"`
	AIDraftScore    *float64           `json:"ai_draft_score"`
	TotalPoints     float64            `gorm:"not null" json:"total_points"`
	Status          string             `gorm:"size:32;not null" json:"status"`
	Feedback        string             `gorm:"type:text" json:"feedback"`
	NeedsReview     bool               `gorm:"not null;default:false" json:"needs_review"`
	TeacherApproved bool               `gorm:"not null;default:false" json:"teacher_approved"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	GradedAt        *time.Time         `json:"graded_at"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Assessment      Assessment         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
	Student         Student            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Responses       []QuestionResponse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses"`
}

// IsGraded reports whether the submission reached its terminal status.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
