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

	"github.com/collapp/collapp-api/internal/config"
	"github.com/collapp/collapp-api/internal/database"
	"github.com/collapp/collapp-api/internal/handler"
	"github.com/collapp/collapp-api/internal/middleware"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
	"github.com/collapp/collapp-api/internal/router"
	"github.com/collapp/collapp-api/internal/service"
	cloud "github.com/collapp/collapp-api/pkg/cloudinary"
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
		&models.College{},
		&models.Application{},
		&models.PlatformSettings{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	storage, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	applicationRepo := repository.NewApplicationRepository(db)
	collegeRepo := repository.NewCollegeRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewLoggingNotifier(notificationRepo, logger)

	applicationService := service.NewApplicationService(applicationRepo, collegeRepo, userRepo, settingsRepo, storage, notifier, validate, logger)
	collegeService := service.NewCollegeService(collegeRepo, userRepo, storage, redisClient, cfg.CollegeCacheTTL, validate, logger)
	studentService := service.NewStudentService(userRepo, storage, validate, logger)
	adminService := service.NewAdminService(userRepo, collegeRepo, validate, logger)
	settingsService := service.NewSettingsService(settingsRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	collegeHandler := handler.NewCollegeHandler(collegeService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.UploadMaxMB * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Use(middleware.Maintenance(func() bool {
		return settingsService.MaintenanceMode(context.Background())
	}))

	router.Register(app, cfg, router.Dependencies{
		ApplicationHandler:  applicationHandler,
		CollegeHandler:      collegeHandler,
		StudentHandler:      studentHandler,
		AdminHandler:        adminHandler,
		SettingsHandler:     settingsHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
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
