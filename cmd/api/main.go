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
	"github.com/rs/zerolog"

	"github.com/noah-isme/kelas-go-api/internal/config"
	"github.com/noah-isme/kelas-go-api/internal/database"
	"github.com/noah-isme/kelas-go-api/internal/handler"
	"github.com/noah-isme/kelas-go-api/internal/middleware"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
	"github.com/noah-isme/kelas-go-api/internal/router"
	"github.com/noah-isme/kelas-go-api/internal/service"
	cloud "github.com/noah-isme/kelas-go-api/pkg/cloudinary"
	"github.com/noah-isme/kelas-go-api/pkg/meeting"
	"github.com/noah-isme/kelas-go-api/pkg/storage"
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
		&models.User{},
		&models.Classroom{},
		&models.ClassroomMember{},
		&models.Assignment{},
		&models.Submission{},
		&models.DPP{},
		&models.Post{},
		&models.Comment{},
		&models.VideoClass{},
		&models.Attendance{},
		&models.Notification{},
		&models.UploadRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, notifications stay node-local")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	fileStorage, err := buildStorage(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise file storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	dppRepo := repository.NewDPPRepository(db)
	postRepo := repository.NewPostRepository(db)
	videoClassRepo := repository.NewVideoClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTokenTTL, logger)
	classroomService := service.NewClassroomService(classroomRepo, validate, logger)
	uploadService := service.NewUploadService(fileStorage, uploadRepo, cfg.MaxUploadMB, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classroomRepo, notificationService, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, classroomRepo, uploadService, notificationService, validate, logger)
	dppService := service.NewDPPService(dppRepo, classroomRepo, validate, logger)
	postService := service.NewPostService(postRepo, classroomRepo, notificationService, validate, logger)
	meetingProvider := meeting.New(cfg.MeetingBaseURL, logger)
	videoClassService := service.NewVideoClassService(videoClassRepo, attendanceRepo, classroomRepo, meetingProvider, postService, notificationService, validate, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, videoClassRepo, classroomRepo, validate, logger)
	dashboardService := service.NewDashboardService(classroomRepo, assignmentRepo, submissionRepo, attendanceService, redisClient, cfg.DashboardCacheTTL, logger)
	calendarService := service.NewCalendarService(classroomRepo, videoClassRepo, assignmentRepo, dppRepo, validate, logger)

	serviceCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	notificationService.Start(serviceCtx)

	deps := router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		ClassroomHandler:    handler.NewClassroomHandler(classroomService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		DPPHandler:          handler.NewDPPHandler(dppService, logger),
		PostHandler:         handler.NewPostHandler(postService, logger),
		VideoClassHandler:   handler.NewVideoClassHandler(videoClassService, attendanceService, logger),
		AttendanceHandler:   handler.NewAttendanceHandler(attendanceService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		CalendarHandler:     handler.NewCalendarHandler(calendarService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildStorage prefers Cloudinary when credentials are configured and falls
// back to serving uploads from local disk.
func buildStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	}

	return storage.NewLocal(cfg.StorageDir, cfg.StorageBaseURL, logger)
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
