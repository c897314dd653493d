package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
	"github.com/gradeflow/gradeflow-api/pkg/ai"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// AnswerGrader is the slice of the AI client the submission flow needs. A nil
// grader means AI grading is not configured and subjective questions defer to
// manual review.
type AnswerGrader interface {
	GradeAnswer(ctx context.Context, input ai.GradeInput) (ai.GradeResult, error)
	Provider() string
}

// SubmissionService handles submission intake and read access.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	grader      AnswerGrader
	events      *GradingEvents
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service. grader and events
// may be nil.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assessments repository.AssessmentRepository,
	grader AnswerGrader,
	events *GradingEvents,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assessments: assessments,
		grader:      grader,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit creates the submission with one response per answered question and
// grades each response in sequence: objective questions deterministically,
// subjective questions through the AI grader when the mode allows it. A failed
// AI call degrades that single question to manual review and the remaining
// questions still get graded.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/gradeflow/gradeflow-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.Int64("submission.assessment_id", int64(payload.AssessmentID)),
		attribute.Int64("submission.student_id", int64(payload.StudentID)),
		attribute.Int("submission.answers", len(payload.Answers)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	questions := make(map[uint]models.Question, len(assessment.Questions))
	for _, question := range assessment.Questions {
		questions[question.ID] = question
	}

	now := s.now()
	submission := models.Submission{
		AssessmentID: assessment.ID,
		StudentID:    payload.StudentID,
		TotalPoints:  assessment.TotalPoints,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  now,
	}

	for _, answer := range payload.Answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			s.logger.Warn().
				Uint("assessment_id", assessment.ID).
				Uint("question_id", answer.QuestionID).
				Msg("answer references unknown question, skipping")
			continue
		}

		response := models.QuestionResponse{
			QuestionID: question.ID,
			Answer:     answer.Answer,
		}

		switch decideStrategy(question, assessment.GradingMode, s.grader != nil) {
		case strategyObjective:
			score, correct := gradeObjective(question, answer.Answer)
			response.Score = &score
			response.IsCorrect = &correct
			response.GradedAt = &now
		case strategyAI:
			s.gradeWithAI(ctx, question, &response, assessment.GradingMode, now)
		case strategyManual:
			// Score stays nil; the aggregator flags the submission for review.
		}

		submission.Responses = append(submission.Responses, response)
	}

	aggregate(&submission, assessment.GradingMode, now)

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_create_failed")
		return dto.SubmissionResponse{}, err
	}

	s.publishStatus(submission)

	span.SetAttributes(
		attribute.Int64("submission.id", int64(submission.ID)),
		attribute.String("submission.status", submission.Status),
		attribute.Bool("submission.needs_review", submission.NeedsReview),
	)
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assessment_id", assessment.ID).
		Str("status", submission.Status).
		Bool("needs_review", submission.NeedsReview).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// gradeWithAI records the AI suggestion on the response. In ai_automatic mode
// the suggestion is also finalized as the score; in ai_assisted mode it waits
// for teacher action. An error leaves the response ungraded.
func (s *submissionService) gradeWithAI(ctx context.Context, question models.Question, response *models.QuestionResponse, gradingMode string, now time.Time) {
	result, err := s.grader.GradeAnswer(ctx, ai.GradeInput{
		Question:      question.Prompt,
		Answer:        response.Answer,
		QuestionType:  question.Type,
		CorrectAnswer: question.CorrectAnswer,
		Rubric:        question.Rubric,
		MaxPoints:     question.Points,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("question_id", question.ID).
			Str("provider", s.grader.Provider()).
			Msg("ai grading failed, deferring question to manual review")
		return
	}

	suggested := result.PointsEarned
	confidence := result.Confidence
	response.AISuggestedScore = &suggested
	response.AISuggestedFeedback = result.Feedback
	response.AIConfidence = &confidence
	if result.Raw != nil {
		response.AIRaw = datatypes.JSONMap(result.Raw)
	} else if result.Fallback {
		response.AIRaw = datatypes.JSONMap{"fallback": true}
	}

	if gradingMode == models.GradingModeAIAutomatic {
		score := suggested
		correct := score > 0
		response.Score = &score
		response.IsCorrect = &correct
		response.Feedback = result.Feedback
		response.GradedAt = &now
	}
}

func (s *submissionService) publishStatus(submission models.Submission) {
	event := GradingEvent{
		SubmissionID: submission.ID,
		AssessmentID: submission.AssessmentID,
		StudentID:    submission.StudentID,
		Status:       submission.Status,
		Score:        submission.Score,
		AIDraftScore: submission.AIDraftScore,
		NeedsReview:  submission.NeedsReview,
		OccurredAt:   s.now(),
	}

	switch submission.Status {
	case models.SubmissionStatusGraded:
		event.Event = EventSubmissionGraded
	case models.SubmissionStatusAIGraded:
		event.Event = EventSubmissionAIGraded
	default:
		event.Event = EventSubmissionReceived
	}

	s.events.Publish(event)
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		AssessmentID: filter.AssessmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
		NeedsReview:  filter.NeedsReview,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
