package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
)

// ErrInvalidGradingState indicates the operation is not valid for the
// submission's current status.
var ErrInvalidGradingState = errors.New("submission is not awaiting AI review")

// ErrResponseNotFound indicates the question response was not located on the
// submission.
var ErrResponseNotFound = errors.New("question response not found")

// ErrScoreExceedsMax indicates a grading score surpasses the question max.
var ErrScoreExceedsMax = errors.New("score exceeds question max")

const scoreEpsilon = 1e-9

// GradingService covers the teacher-facing grading operations. Every
// operation re-reads current state before mutating it.
type GradingService interface {
	GradeSubmission(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
	AcceptAISuggestions(ctx context.Context, submissionID uint) (dto.SubmissionResponse, error)
	GradeResponse(ctx context.Context, submissionID, responseID uint, payload dto.GradeResponseRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	events      *GradingEvents
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service. events may be nil.
func NewGradingService(submissions repository.SubmissionRepository, events *GradingEvents, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// GradeSubmission applies a whole-submission score directly, bypassing
// per-question state entirely.
func (s *gradingService) GradeSubmission(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.grade_submission", submissionID)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, span, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if submission.IsGraded() && submission.Score != nil &&
		math.Abs(*submission.Score-payload.Score) < scoreEpsilon &&
		strings.TrimSpace(submission.Feedback) == feedback {
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	now := s.now()
	score := payload.Score
	submission.Score = &score
	submission.Feedback = feedback
	submission.Status = models.SubmissionStatusGraded
	submission.TeacherApproved = true
	submission.NeedsReview = false
	submission.GradedAt = &now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	s.publishGraded(submission)
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("score", payload.Score).
		Msg("submission graded directly")

	return dto.NewSubmissionResponse(submission), nil
}

// AcceptAISuggestions copies every pending AI suggestion into the final score
// and finalizes the submission. Only valid from ai_graded.
func (s *gradingService) AcceptAISuggestions(ctx context.Context, submissionID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.accept_ai", submissionID)
	defer span.End()

	submission, err := s.getSubmission(ctx, span, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusAIGraded {
		span.SetStatus(codes.Error, "invalid_state")
		return dto.SubmissionResponse{}, ErrInvalidGradingState
	}

	now := s.now()
	var total float64
	needsReview := false
	for i := range submission.Responses {
		response := &submission.Responses[i]
		if response.HasSuggestion() {
			score := *response.AISuggestedScore
			correct := score > 0
			response.Score = &score
			response.IsCorrect = &correct
			response.Feedback = response.AISuggestedFeedback
			response.GradedAt = &now
		}
		if response.Score == nil {
			needsReview = true
			continue
		}
		total += *response.Score
	}

	submission.Score = &total
	submission.Status = models.SubmissionStatusGraded
	submission.TeacherApproved = true
	submission.NeedsReview = needsReview
	submission.GradedAt = &now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	s.publishGraded(submission)
	span.SetAttributes(attribute.Float64("grading.score", total))
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("score", total).
		Msg("ai suggestions accepted")

	return dto.NewSubmissionResponse(submission), nil
}

// GradeResponse applies a teacher's score and feedback to one question
// response, then re-aggregates the submission. Re-applying the same score and
// feedback is a no-op.
func (s *gradingService) GradeResponse(ctx context.Context, submissionID, responseID uint, payload dto.GradeResponseRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.grade_response", submissionID)
	span.SetAttributes(attribute.Int64("grading.response_id", int64(responseID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, span, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	response, err := s.submissions.GetResponse(ctx, submissionID, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "response_not_found")
			return dto.SubmissionResponse{}, ErrResponseNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "response_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	if payload.Score > response.Question.Points+scoreEpsilon {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if response.Score != nil &&
		math.Abs(*response.Score-payload.Score) < scoreEpsilon &&
		strings.TrimSpace(response.Feedback) == feedback {
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	now := s.now()
	score := payload.Score
	correct := score > 0
	response.Score = &score
	response.IsCorrect = &correct
	response.Feedback = feedback
	response.GradedAt = &now
	if response.AISuggestedScore != nil && math.Abs(*response.AISuggestedScore-score) > scoreEpsilon {
		response.TeacherOverride = true
	}

	if err := s.submissions.UpdateResponse(ctx, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response_update_failed")
		return dto.SubmissionResponse{}, err
	}

	// Re-read so the aggregate sees the response just written.
	submission, err = s.getSubmission(ctx, span, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	finalizeFromResponses(&submission, now)

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if submission.IsGraded() {
		s.publishGraded(submission)
	}
	span.SetAttributes(
		attribute.Float64("grading.score", payload.Score),
		attribute.String("grading.status", submission.Status),
	)
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("response_id", responseID).
		Bool("teacher_override", response.TeacherOverride).
		Msg("question response graded")

	return dto.NewSubmissionResponse(submission), nil
}

// finalizeFromResponses recomputes the submission score as the sum over all
// finalized responses. When every response is finalized the submission
// transitions to graded; otherwise it stays put and keeps the review flag.
func finalizeFromResponses(submission *models.Submission, now time.Time) {
	var total float64
	allFinal := true
	for i := range submission.Responses {
		if submission.Responses[i].Score == nil {
			allFinal = false
			continue
		}
		total += *submission.Responses[i].Score
	}

	if !allFinal {
		submission.NeedsReview = true
		return
	}

	submission.Score = &total
	submission.NeedsReview = false
	if submission.Status == models.SubmissionStatusSubmitted || submission.Status == models.SubmissionStatusAIGraded {
		submission.Status = models.SubmissionStatusGraded
		submission.TeacherApproved = true
		submission.GradedAt = &now
	} else if submission.IsGraded() {
		// Single-question re-grade on a graded submission refreshes the total.
		submission.GradedAt = &now
	}
}

func (s *gradingService) startSpan(ctx context.Context, name string, submissionID uint) (context.Context, trace.Span) {
	tracer := otel.Tracer("github.com/gradeflow/gradeflow-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.Int64("grading.submission_id", int64(submissionID)))
	return ctx, span
}

func (s *gradingService) getSubmission(ctx context.Context, span trace.Span, submissionID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return models.Submission{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return models.Submission{}, err
	}

	return submission, nil
}

func (s *gradingService) publishGraded(submission models.Submission) {
	s.events.Publish(GradingEvent{
		Event:        EventSubmissionGraded,
		SubmissionID: submission.ID,
		AssessmentID: submission.AssessmentID,
		StudentID:    submission.StudentID,
		Status:       submission.Status,
		Score:        submission.Score,
		NeedsReview:  submission.NeedsReview,
		OccurredAt:   s.now(),
	})
}
