package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/models"
)

// AssessmentRepository defines data operations for assessments and their
// questions.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uint) (models.Assessment, error)
	List(ctx context.Context) ([]models.Assessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}
