package service

import (
	"strings"

	"github.com/gradeflow/gradeflow-api/internal/models"
)

// gradeStrategy is the per-question routing decision: deterministic match,
// AI grading, or defer to a teacher.
type gradeStrategy int

const (
	strategyObjective gradeStrategy = iota
	strategyAI
	strategyManual
)

// decideStrategy classifies one answered question. Objective types are always
// matched deterministically regardless of grading mode; subjective types
// follow the assessment's mode and degrade to manual review when no AI client
// is available.
func decideStrategy(question models.Question, gradingMode string, aiAvailable bool) gradeStrategy {
	if question.IsObjective() {
		return strategyObjective
	}

	switch gradingMode {
	case models.GradingModeAIAutomatic, models.GradingModeAIAssisted:
		if aiAvailable {
			return strategyAI
		}
	}

	return strategyManual
}

// normalizeAnswer prepares answer text for objective comparison.
func normalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// gradeObjective scores an objective answer by normalized exact match: full
// points or zero, never partial credit.
func gradeObjective(question models.Question, answer string) (float64, bool) {
	if normalizeAnswer(answer) == normalizeAnswer(question.CorrectAnswer) {
		return question.Points, true
	}
	return 0, false
}
