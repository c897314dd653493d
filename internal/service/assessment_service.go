package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
)

// ErrAssessmentNotFound indicates the assessment was not located.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrObjectiveNeedsAnswer indicates an objective question lacks the correct
// answer it would be matched against.
var ErrObjectiveNeedsAnswer = errors.New("objective questions require a correct answer")

// AssessmentService manages assessments and their questions.
type AssessmentService interface {
	Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssessmentResponse, error)
	List(ctx context.Context) ([]dto.AssessmentResponse, error)
}

type assessmentService struct {
	repo      repository.AssessmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(repo repository.AssessmentRepository, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assessmentService) Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	tracer := otel.Tracer("github.com/gradeflow/gradeflow-api/internal/service/assessment")
	ctx, span := tracer.Start(ctx, "assessment.create")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}

	assessment := models.Assessment{
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		GradingMode:  payload.GradingMode,
		PassingScore: payload.PassingScore,
		CreatedBy:    payload.CreatedBy,
	}

	// TotalPoints is always the sum of the question points; it is never taken
	// from the request.
	for i, question := range payload.Questions {
		entry := models.Question{
			Type:          question.Type,
			Prompt:        strings.TrimSpace(question.Prompt),
			CorrectAnswer: strings.TrimSpace(question.CorrectAnswer),
			Rubric:        strings.TrimSpace(question.Rubric),
			Points:        question.Points,
			Position:      i + 1,
		}
		if entry.IsObjective() && entry.CorrectAnswer == "" {
			span.SetStatus(codes.Error, "objective_missing_answer")
			return dto.AssessmentResponse{}, ErrObjectiveNeedsAnswer
		}
		assessment.TotalPoints += entry.Points
		assessment.Questions = append(assessment.Questions, entry)
	}

	if err := s.repo.Create(ctx, &assessment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_create_failed")
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(
		attribute.Int64("assessment.id", int64(assessment.ID)),
		attribute.Int("assessment.questions", len(assessment.Questions)),
	)
	s.logger.Info().
		Uint("assessment_id", assessment.ID).
		Str("grading_mode", assessment.GradingMode).
		Int("questions", len(assessment.Questions)).
		Msg("assessment created")

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Get(ctx context.Context, id uint) (dto.AssessmentResponse, error) {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) List(ctx context.Context) ([]dto.AssessmentResponse, error) {
	assessments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}
