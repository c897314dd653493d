package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/models"
)

func TestAssessmentCreateSumsPoints(t *testing.T) {
	repo := &fakeAssessmentRepo{assessments: map[uint]models.Assessment{}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssessmentService(repo, validate, testLogger())

	result, err := svc.Create(context.Background(), dto.AssessmentCreateRequest{
		Title:       "Unit 3 quiz",
		GradingMode: models.GradingModeAIAssisted,
		Questions: []dto.QuestionInput{
			{Type: models.QuestionTypeMultipleChoice, Prompt: "Pick one", CorrectAnswer: "A", Points: 10},
			{Type: models.QuestionTypeShortAnswer, Prompt: "Explain it", Points: 15},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 25.0, result.TotalPoints)
	require.Len(t, result.Questions, 2)
	require.Equal(t, 1, result.Questions[0].Position)
	require.Equal(t, 2, result.Questions[1].Position)
}

func TestAssessmentCreateObjectiveNeedsAnswer(t *testing.T) {
	repo := &fakeAssessmentRepo{assessments: map[uint]models.Assessment{}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssessmentService(repo, validate, testLogger())

	_, err := svc.Create(context.Background(), dto.AssessmentCreateRequest{
		Title:       "Broken quiz",
		GradingMode: models.GradingModeManual,
		Questions: []dto.QuestionInput{
			{Type: models.QuestionTypeTrueFalse, Prompt: "Is water wet?", Points: 5},
		},
	})
	require.ErrorIs(t, err, ErrObjectiveNeedsAnswer)
	require.Equal(t, 0, repo.createCalls)
}

func TestAssessmentCreateRejectsUnknownMode(t *testing.T) {
	repo := &fakeAssessmentRepo{assessments: map[uint]models.Assessment{}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssessmentService(repo, validate, testLogger())

	_, err := svc.Create(context.Background(), dto.AssessmentCreateRequest{
		Title:       "Quiz",
		GradingMode: "telepathic",
		Questions: []dto.QuestionInput{
			{Type: models.QuestionTypeShortAnswer, Prompt: "Explain", Points: 5},
		},
	})
	require.Error(t, err)
	require.Equal(t, 0, repo.createCalls)
}

func TestAssessmentGetNotFound(t *testing.T) {
	repo := &fakeAssessmentRepo{assessments: map[uint]models.Assessment{}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssessmentService(repo, validate, testLogger())

	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}
