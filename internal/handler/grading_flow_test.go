package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gradeflow/gradeflow-api/internal/config"
	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/handler"
	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
	"github.com/gradeflow/gradeflow-api/internal/router"
	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/pkg/ai"
)

type stubGrader struct {
	result ai.GradeResult
	err    error
}

func (s *stubGrader) GradeAnswer(_ context.Context, _ ai.GradeInput) (ai.GradeResult, error) {
	return s.result, s.err
}

func (s *stubGrader) Provider() string { return "stub" }

type stubLister struct {
	models []string
}

func (s *stubLister) Models(_ context.Context) ([]string, error) {
	return s.models, nil
}

func (s *stubLister) Provider() string { return "stub" }

func setupGradingApp(t *testing.T, grader service.AnswerGrader, role string) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Assessment{},
		&models.Question{},
		&models.Submission{},
		&models.QuestionResponse{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	assessmentService := service.NewAssessmentService(assessmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, grader, nil, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, nil, validate, logger)
	catalogService := service.NewModelCatalogService(&stubLister{models: []string{"llama3.2"}}, nil, 0, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		ModelHandler:      handler.NewModelHandler(catalogService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func createQuizAssessment(t *testing.T, app *fiber.App, mode string) dto.AssessmentResponse {
	t.Helper()

	resp := postJSON(t, app, "/api/v2/assessments", dto.AssessmentCreateRequest{
		Title:       "Unit 3 quiz",
		GradingMode: mode,
		Questions: []dto.QuestionInput{
			{Type: models.QuestionTypeMultipleChoice, Prompt: "Capital of France?", CorrectAnswer: "B", Points: 10},
			{Type: models.QuestionTypeShortAnswer, Prompt: "Explain why rivers meander.", Points: 10},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Success bool                   `json:"success"`
		Data    dto.AssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, 20.0, envelope.Data.TotalPoints)
	return envelope.Data
}

func submitQuizAnswers(t *testing.T, app *fiber.App, assessmentID uint) dto.SubmissionResponse {
	t.Helper()

	assessment := getAssessment(t, app, assessmentID)
	require.Len(t, assessment.Questions, 2)

	resp := postJSON(t, app, "/api/v2/submissions", dto.SubmitRequest{
		AssessmentID: assessmentID,
		StudentID:    1,
		Answers: []dto.AnswerInput{
			{QuestionID: assessment.Questions[0].ID, Answer: "b"},
			{QuestionID: assessment.Questions[1].ID, Answer: "Erosion on outer banks."},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	return envelope.Data
}

func getAssessment(t *testing.T, app *fiber.App, id uint) dto.AssessmentResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v2/assessments/%d", id), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.AssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	return envelope.Data
}

func TestAssistedFlowWithAcceptAI(t *testing.T) {
	grader := &stubGrader{result: ai.GradeResult{PointsEarned: 7, Feedback: "Close.", Confidence: 0.7}}
	app := setupGradingApp(t, grader, "teacher")

	assessment := createQuizAssessment(t, app, models.GradingModeAIAssisted)
	submission := submitQuizAnswers(t, app, assessment.ID)

	require.Equal(t, models.SubmissionStatusAIGraded, submission.Status)
	require.True(t, submission.NeedsReview)
	require.Nil(t, submission.Score)
	require.NotNil(t, submission.AIDraftScore)
	require.Equal(t, 17.0, *submission.AIDraftScore)

	resp := postJSON(t, app, fmt.Sprintf("/api/v2/submissions/%d/accept-ai", submission.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, models.SubmissionStatusGraded, envelope.Data.Status)
	require.True(t, envelope.Data.TeacherApproved)
	require.NotNil(t, envelope.Data.Score)
	require.Equal(t, 17.0, *envelope.Data.Score)
}

func TestManualFlowWithSingleResponseGrading(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	assessment := createQuizAssessment(t, app, models.GradingModeManual)
	submission := submitQuizAnswers(t, app, assessment.ID)

	require.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.True(t, submission.NeedsReview)

	var pendingID uint
	for _, response := range submission.Responses {
		if response.Score == nil {
			pendingID = response.ID
		}
	}
	require.NotZero(t, pendingID)

	resp := postJSON(t, app,
		fmt.Sprintf("/api/v2/submissions/%d/responses/%d/grade", submission.ID, pendingID),
		dto.GradeResponseRequest{Score: 8, Feedback: "Well argued."})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, models.SubmissionStatusGraded, envelope.Data.Status)
	require.False(t, envelope.Data.NeedsReview)
	require.NotNil(t, envelope.Data.Score)
	require.Equal(t, 18.0, *envelope.Data.Score)
}

func TestAcceptAIConflictOnManualSubmission(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	assessment := createQuizAssessment(t, app, models.GradingModeManual)
	submission := submitQuizAnswers(t, app, assessment.ID)

	resp := postJSON(t, app, fmt.Sprintf("/api/v2/submissions/%d/accept-ai", submission.ID), nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGradingRequiresTeacherRole(t *testing.T) {
	app := setupGradingApp(t, nil, "student")

	resp := postJSON(t, app, "/api/v2/submissions/1/accept-ai", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDirectGradeEndpoint(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	assessment := createQuizAssessment(t, app, models.GradingModeManual)
	submission := submitQuizAnswers(t, app, assessment.ID)

	resp := postJSON(t, app,
		fmt.Sprintf("/api/v2/submissions/%d/grade", submission.ID),
		dto.GradeSubmissionRequest{Score: 15, Feedback: "Reviewed by hand."})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, models.SubmissionStatusGraded, envelope.Data.Status)
	require.Equal(t, 15.0, *envelope.Data.Score)
	require.Equal(t, "Reviewed by hand.", envelope.Data.Feedback)
}

func TestModelCatalogEndpoint(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/ai/models", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.ModelListResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "stub", envelope.Data.Provider)
	require.Equal(t, []string{"llama3.2"}, envelope.Data.Models)
}

func TestHealthEndpoint(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string `json:"status"`
			Service string `json:"service"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, "ok", envelope.Data.Status)
	require.Equal(t, "Test", envelope.Data.Service)
}

func TestSubmissionNotFound(t *testing.T) {
	app := setupGradingApp(t, nil, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/submissions/999", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
