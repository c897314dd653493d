package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/models"
)

func newGradingFixture(t *testing.T, submission models.Submission) (GradingService, *fakeSubmissionRepo) {
	t.Helper()

	repo := newFakeSubmissionRepo()
	repo.questions[1] = models.Question{ID: 1, Type: models.QuestionTypeMultipleChoice, CorrectAnswer: "B", Points: 10}
	repo.questions[2] = models.Question{ID: 2, Type: models.QuestionTypeShortAnswer, Points: 10}
	repo.submissions[submission.ID] = copySubmission(submission)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGradingService(repo, nil, validate, testLogger()), repo
}

func aiGradedSubmission() models.Submission {
	mcScore, correct := 10.0, true
	suggestion, confidence := 7.0, 0.7
	draft := 17.0
	return models.Submission{
		ID:           5,
		AssessmentID: 1,
		StudentID:    7,
		TotalPoints:  20,
		Status:       models.SubmissionStatusAIGraded,
		NeedsReview:  true,
		AIDraftScore: &draft,
		Responses: []models.QuestionResponse{
			{ID: 1, SubmissionID: 5, QuestionID: 1, Score: &mcScore, IsCorrect: &correct},
			{ID: 2, SubmissionID: 5, QuestionID: 2, AISuggestedScore: &suggestion, AISuggestedFeedback: "Close, missing deposition.", AIConfidence: &confidence},
		},
	}
}

func TestAcceptAIRoundTrip(t *testing.T) {
	svc, repo := newGradingFixture(t, aiGradedSubmission())

	result, err := svc.AcceptAISuggestions(context.Background(), 5)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, result.Status)
	require.True(t, result.TeacherApproved)
	require.False(t, result.NeedsReview)
	require.NotNil(t, result.Score)
	require.Equal(t, 17.0, *result.Score)
	require.NotNil(t, result.GradedAt)

	sa := result.Responses[1]
	require.NotNil(t, sa.Score)
	require.Equal(t, 7.0, *sa.Score)
	require.NotNil(t, sa.IsCorrect)
	require.True(t, *sa.IsCorrect)
	require.Equal(t, "Close, missing deposition.", sa.Feedback)
	require.False(t, sa.TeacherOverride)

	require.Equal(t, 1, repo.updateCalls)
}

func TestAcceptAIInvalidState(t *testing.T) {
	submission := aiGradedSubmission()
	submission.Status = models.SubmissionStatusSubmitted
	svc, repo := newGradingFixture(t, submission)

	_, err := svc.AcceptAISuggestions(context.Background(), 5)
	require.ErrorIs(t, err, ErrInvalidGradingState)
	require.Equal(t, 0, repo.updateCalls)
}

func TestAcceptAISubmissionNotFound(t *testing.T) {
	svc, _ := newGradingFixture(t, aiGradedSubmission())

	_, err := svc.AcceptAISuggestions(context.Background(), 99)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGradeSubmissionDirect(t *testing.T) {
	svc, repo := newGradingFixture(t, aiGradedSubmission())

	result, err := svc.GradeSubmission(context.Background(), 5, dto.GradeSubmissionRequest{Score: 15, Feedback: "Reviewed by hand."})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, result.Status)
	require.True(t, result.TeacherApproved)
	require.False(t, result.NeedsReview)
	require.NotNil(t, result.Score)
	require.Equal(t, 15.0, *result.Score)
	require.Equal(t, "Reviewed by hand.", result.Feedback)

	// Direct grading never touches per-question state.
	require.Nil(t, result.Responses[1].Score)
	require.Equal(t, 1, repo.updateCalls)
}

func TestGradeSubmissionIdempotent(t *testing.T) {
	score := 15.0
	gradedAt := time.Now().Add(-time.Hour)
	submission := aiGradedSubmission()
	submission.Status = models.SubmissionStatusGraded
	submission.Score = &score
	submission.Feedback = "Reviewed by hand."
	submission.GradedAt = &gradedAt
	svc, repo := newGradingFixture(t, submission)

	result, err := svc.GradeSubmission(context.Background(), 5, dto.GradeSubmissionRequest{Score: 15, Feedback: "Reviewed by hand."})
	require.NoError(t, err)
	require.Equal(t, 15.0, *result.Score)
	require.Equal(t, 0, repo.updateCalls)
}

func TestGradeResponseOverrideAndFinalize(t *testing.T) {
	svc, repo := newGradingFixture(t, aiGradedSubmission())

	result, err := svc.GradeResponse(context.Background(), 5, 2, dto.GradeResponseRequest{Score: 9, Feedback: "Better than the model thought."})
	require.NoError(t, err)

	sa := result.Responses[1]
	require.NotNil(t, sa.Score)
	require.Equal(t, 9.0, *sa.Score)
	require.True(t, sa.TeacherOverride)
	require.Equal(t, "Better than the model thought.", sa.Feedback)

	require.Equal(t, models.SubmissionStatusGraded, result.Status)
	require.True(t, result.TeacherApproved)
	require.NotNil(t, result.Score)
	require.Equal(t, 19.0, *result.Score)
	require.Equal(t, 1, repo.responseUpdates)
}

func TestGradeResponseMatchingSuggestionNoOverride(t *testing.T) {
	svc, _ := newGradingFixture(t, aiGradedSubmission())

	result, err := svc.GradeResponse(context.Background(), 5, 2, dto.GradeResponseRequest{Score: 7, Feedback: "Agreed."})
	require.NoError(t, err)

	sa := result.Responses[1]
	require.False(t, sa.TeacherOverride)
	require.Equal(t, 17.0, *result.Score)
}

func TestGradeResponseIdempotent(t *testing.T) {
	svc, repo := newGradingFixture(t, aiGradedSubmission())

	first, err := svc.GradeResponse(context.Background(), 5, 2, dto.GradeResponseRequest{Score: 9, Feedback: "Better."})
	require.NoError(t, err)

	second, err := svc.GradeResponse(context.Background(), 5, 2, dto.GradeResponseRequest{Score: 9, Feedback: "Better."})
	require.NoError(t, err)

	require.Equal(t, *first.Score, *second.Score)
	require.Equal(t, first.Status, second.Status)
	require.Equal(t, 1, repo.responseUpdates)
}

func TestGradeResponseScoreExceedsMax(t *testing.T) {
	svc, repo := newGradingFixture(t, aiGradedSubmission())

	_, err := svc.GradeResponse(context.Background(), 5, 2, dto.GradeResponseRequest{Score: 11})
	require.ErrorIs(t, err, ErrScoreExceedsMax)
	require.Equal(t, 0, repo.responseUpdates)
}

func TestGradeResponsePartialLeavesStatus(t *testing.T) {
	// Grading the already-final objective response leaves the pending
	// subjective one ungraded; the submission must not transition.
	svc, _ := newGradingFixture(t, aiGradedSubmission())

	result, err := svc.GradeResponse(context.Background(), 5, 1, dto.GradeResponseRequest{Score: 5, Feedback: "Partial credit."})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusAIGraded, result.Status)
	require.True(t, result.NeedsReview)
	require.Nil(t, result.Score)
}

func TestGradeResponseNotFound(t *testing.T) {
	svc, _ := newGradingFixture(t, aiGradedSubmission())

	_, err := svc.GradeResponse(context.Background(), 5, 42, dto.GradeResponseRequest{Score: 5})
	require.ErrorIs(t, err, ErrResponseNotFound)
}
