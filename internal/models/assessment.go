package models

import "time"

// Grading modes governing how subjective questions are scored.
const (
	// GradingModeAIAutomatic grades subjective questions with AI and finalizes
	// without teacher involvement when nothing needs review.
	GradingModeAIAutomatic = "ai_automatic"
	// GradingModeAIAssisted records AI suggestions that a teacher accepts or
	// overrides before the submission is final.
	GradingModeAIAssisted = "ai_assisted"
	// GradingModeManual leaves every subjective question to the teacher.
	GradingModeManual = "manual"
)

// Question types. Objective types are decided by exact string match; the rest
// are routed per the assessment's grading mode.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeLongAnswer     = "long_answer"
	QuestionTypeFillInBlank    = "fill_in_blank"
)

// Assessment is a graded set of questions with a per-assessment grading policy.
// TotalPoints always equals the sum of its questions' points; the assessment
// service enforces that at create/update time.
type Assessment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	GradingMode  string     `gorm:"size:32;not null;default:manual" json:"grading_mode"`
	TotalPoints  float64    `gorm:"not null" json:"total_points"`
	PassingScore float64    `json:"passing_score"`
	CreatedBy    uint       `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Questions    []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// Question belongs to an assessment. CorrectAnswer doubles as the reference
// answer for subjective types.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AssessmentID  uint      `gorm:"not null;index" json:"assessment_id"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	Prompt        string    `gorm:"type:text;not null" json:"prompt"`
	CorrectAnswer string    `gorm:"type:text" json:"correct_answer"`
	Rubric        string    `gorm:"type:text" json:"rubric"`
	Points        float64   `gorm:"not null" json:"points"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsObjective reports whether the question type is graded deterministically
// regardless of grading mode.
func (q Question) IsObjective() bool {
	return q.Type == QuestionTypeMultipleChoice || q.Type == QuestionTypeTrueFalse
}

// ValidQuestionType reports whether t names a known question type.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer,
		QuestionTypeLongAnswer, QuestionTypeFillInBlank:
		return true
	}
	return false
}

// ValidGradingMode reports whether m names a known grading mode.
func ValidGradingMode(m string) bool {
	switch m {
	case GradingModeAIAutomatic, GradingModeAIAssisted, GradingModeManual:
		return true
	}
	return false
}
