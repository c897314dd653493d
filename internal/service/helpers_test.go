package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
	"github.com/gradeflow/gradeflow-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAssessmentRepo struct {
	assessments map[uint]models.Assessment
	createCalls int
}

func (f *fakeAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	f.createCalls++
	if assessment.ID == 0 {
		assessment.ID = uint(len(f.assessments) + 1)
	}
	if f.assessments == nil {
		f.assessments = map[uint]models.Assessment{}
	}
	f.assessments[assessment.ID] = *assessment
	return nil
}

func (f *fakeAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	f.assessments[assessment.ID] = *assessment
	return nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	assessment, ok := f.assessments[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (f *fakeAssessmentRepo) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	for _, assessment := range f.assessments {
		assessments = append(assessments, assessment)
	}
	return assessments, nil
}

type fakeSubmissionRepo struct {
	submissions     map[uint]models.Submission
	questions       map[uint]models.Question
	createCalls     int
	updateCalls     int
	responseUpdates int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: map[uint]models.Submission{},
		questions:   map[uint]models.Question{},
	}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	f.createCalls++
	if submission.ID == 0 {
		submission.ID = uint(len(f.submissions) + 1)
	}
	for i := range submission.Responses {
		if submission.Responses[i].ID == 0 {
			submission.Responses[i].ID = uint(i + 1)
		}
		submission.Responses[i].SubmissionID = submission.ID
	}
	f.submissions[submission.ID] = copySubmission(*submission)
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.updateCalls++
	f.submissions[submission.ID] = copySubmission(*submission)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return copySubmission(submission), nil
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if filter.AssessmentID != nil && submission.AssessmentID != *filter.AssessmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		if filter.NeedsReview != nil && submission.NeedsReview != *filter.NeedsReview {
			continue
		}
		submissions = append(submissions, copySubmission(submission))
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) GetResponse(ctx context.Context, submissionID, responseID uint) (models.QuestionResponse, error) {
	submission, ok := f.submissions[submissionID]
	if !ok {
		return models.QuestionResponse{}, gorm.ErrRecordNotFound
	}
	for _, response := range submission.Responses {
		if response.ID == responseID {
			response.Question = f.questions[response.QuestionID]
			return response, nil
		}
	}
	return models.QuestionResponse{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) UpdateResponse(ctx context.Context, response *models.QuestionResponse) error {
	f.responseUpdates++
	submission, ok := f.submissions[response.SubmissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range submission.Responses {
		if submission.Responses[i].ID == response.ID {
			submission.Responses[i] = *response
			f.submissions[submission.ID] = submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func copySubmission(submission models.Submission) models.Submission {
	responses := make([]models.QuestionResponse, len(submission.Responses))
	copy(responses, submission.Responses)
	submission.Responses = responses
	return submission
}

type fakeGrader struct {
	result ai.GradeResult
	err    error
	inputs []ai.GradeInput
}

func (f *fakeGrader) GradeAnswer(ctx context.Context, input ai.GradeInput) (ai.GradeResult, error) {
	f.inputs = append(f.inputs, input)
	return f.result, f.err
}

func (f *fakeGrader) Provider() string {
	return "fake"
}
