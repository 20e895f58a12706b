package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"race-challenge-system/config"
	"race-challenge-system/handlers"
	"race-challenge-system/models"
	"race-challenge-system/services"
	"race-challenge-system/utils"
	"race-challenge-system/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const stagingSweepInterval = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := db.AutoMigrate(
		&models.Challenge{},
		&models.ChallengeCompletion{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024, // multipart overhead
		ErrorHandler: services.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Admin-Token",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	var store utils.ObjectStore
	if cfg.UsesObjectStorage() {
		s3Store, err := utils.NewS3Store(ctx, utils.S3Options{
			Endpoint:        cfg.StorageEndpoint,
			Region:          cfg.StorageRegion,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretKey,
			Bucket:          cfg.StorageBucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			ForcePathStyle:  cfg.StorageForcePathStyle,
		})
		if err != nil {
			log.Fatal("failed to initialize object storage:", err)
		}
		store = s3Store
		log.Printf("✅ Uploads go to bucket %q at %s", cfg.StorageBucket, cfg.StorageEndpoint)
	} else {
		localStore, err := utils.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatal(err)
		}
		store = localStore
		app.Static("/uploads", cfg.UploadDir)
		log.Printf("⚠️  STORAGE_ENDPOINT not set, storing uploads under ./%s", cfg.UploadDir)
	}

	sessions, err := services.NewSessionManager(cfg.AdminPassword, cfg.AdminPasswordHash, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatal("failed to initialize admin sessions:", err)
	}
	if cfg.SessionSecret == "" {
		log.Println("⚠️  SESSION_SECRET not set, admin sessions will not survive a restart")
	}

	challengeService := services.NewChallengeService(db)
	completionService := services.NewCompletionService(db, store)
	submissionService := services.NewSubmissionService(db, store, challengeService, cfg.MaxUploadBytes)
	authService := services.NewAuthService(sessions, cfg.IsProduction())

	if cfg.SeedChallenges {
		if _, err := challengeService.SeedDefaults(ctx); err != nil {
			log.Fatal("failed to seed challenges:", err)
		}
	}

	pages, err := web.Pages()
	if err != nil {
		log.Fatal("failed to load embedded pages:", err)
	}

	handlers.SetupPublicRoutes(app, challengeService, submissionService, cfg.SubmitRateLimit)
	handlers.SetupAdminRoutes(app, handlers.AdminDeps{
		Sessions:       sessions,
		Auth:           authService,
		Completions:    completionService,
		Challenges:     challengeService,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	handlers.SetupPages(app, pages, sessions)

	sched, err := submissionService.StartStagingSweeper(stagingSweepInterval, cfg.StagingMaxAge)
	if err != nil {
		log.Fatal("failed to start staging sweeper:", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))
	log.Printf("✅ Staging sweeper running (every %s, max age %s)", stagingSweepInterval, cfg.StagingMaxAge)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server stopped")
}
