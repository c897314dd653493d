package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	AssessmentID *uint
	StudentID    *uint
	Status       *string
	NeedsReview  *bool
}

// SubmissionRepository defines data operations for submissions and their
// question responses.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetResponse(ctx context.Context, submissionID, responseID uint) (models.QuestionResponse, error)
	UpdateResponse(ctx context.Context, response *models.QuestionResponse) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assessment").
		Preload("Responses").
		Preload("Responses.Question")
}

// Create persists the submission with its responses. The Assessment and
// Student associations are referenced by ID only, never written from here.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assessment", "Student", "Responses.Question").Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Omit("Assessment", "Student", "Responses.Question").
		Save(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filter.AssessmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.NeedsReview != nil {
		query = query.Where("needs_review = ?", *filter.NeedsReview)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetResponse(ctx context.Context, submissionID, responseID uint) (models.QuestionResponse, error) {
	var response models.QuestionResponse
	if err := r.db.WithContext(ctx).
		Preload("Question").
		Where("submission_id = ?", submissionID).
		First(&response, responseID).Error; err != nil {
		return models.QuestionResponse{}, err
	}

	return response, nil
}

func (r *submissionRepository) UpdateResponse(ctx context.Context, response *models.QuestionResponse) error {
	return r.db.WithContext(ctx).Omit("Question").Save(response).Error
}
