package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/config"
	"github.com/gradeflow/gradeflow-api/internal/database"
	"github.com/gradeflow/gradeflow-api/internal/handler"
	"github.com/gradeflow/gradeflow-api/internal/middleware"
	"github.com/gradeflow/gradeflow-api/internal/models"
	"github.com/gradeflow/gradeflow-api/internal/repository"
	"github.com/gradeflow/gradeflow-api/internal/router"
	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Assessment{},
		&models.Question{},
		&models.Submission{},
		&models.QuestionResponse{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var aiClient *ai.Client
	if cfg.AIEnabled() {
		aiClient, err = ai.NewClient(ai.Config{
			Provider:       cfg.AIProvider,
			Model:          cfg.AIModel,
			BaseURL:        cfg.AIBaseURL,
			APIKey:         cfg.AIAPIKey,
			AppReferer:     cfg.AIAppReferer,
			AppTitle:       cfg.AIAppTitle,
			MaxTokens:      cfg.AIMaxTokens,
			Temperature:    float32(cfg.AITemperature),
			RequestTimeout: cfg.AIRequestTimeout,
			ConnectTimeout: cfg.AIConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai client: %v", err)
		}
		defer aiClient.Close()
	} else {
		logger.Warn().Msg("ai grading disabled, subjective questions defer to manual review")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	events := service.NewGradingEvents(natsConn, cfg.EventSubjectBase, logger)

	var grader service.AnswerGrader
	var lister service.ModelLister
	if aiClient != nil {
		grader = aiClient
		lister = aiClient
	}

	assessmentService := service.NewAssessmentService(assessmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, grader, events, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, events, validate, logger)
	catalogService := service.NewModelCatalogService(lister, redisClient, cfg.ModelCacheTTL, logger)

	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	modelHandler := handler.NewModelHandler(catalogService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: assessmentHandler,
		SubmissionHandler: submissionHandler,
		GradingHandler:    gradingHandler,
		ModelHandler:      modelHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
