package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachtrack/internal/api"
	"coachtrack/internal/config"
	"coachtrack/internal/jobs"
	"coachtrack/internal/notify"
	"coachtrack/internal/repository/mongo"
	"coachtrack/internal/service"
	"coachtrack/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title CoachTrack API
// @version 1.0
// @description Coaching backend: daily/weekly client feedback, body-composition
// @description check-ins, progress photos, reminder scans and push delivery.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting CoachTrack Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// The canonical timezone: every civil-day boundary, predicate and cron
	// entry is evaluated in this location.
	loc, err := time.LoadLocation(cfg.Jobs.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid jobs timezone %q: %v", cfg.Jobs.Timezone, err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureDailyRecordIndexes(ctx, appDB.Collection("dailyFeedback"))
		mongo.EnsureWeeklyRecordIndexes(ctx, appDB.Collection("weeklyFeedback"))
		mongo.EnsureCheckinIndexes(ctx, appDB.Collection("checkins"))
		mongo.EnsurePhotoSetIndexes(ctx, appDB.Collection("photoSets"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsurePowerliftingIndexes(ctx, appDB.Collection("powerlifting"))
		mongo.EnsureQuestionnaireIndexes(ctx, appDB.Collection("questionnaire"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Push Delivery ---
	notifier, err := notify.NewOneSignalClient(cfg.OneSignal)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize OneSignal client: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	dailyRepo := mongo.NewMongoDailyRecordRepository(appDB)
	weeklyRepo := mongo.NewMongoWeeklyRecordRepository(appDB)
	checkinRepo := mongo.NewMongoCheckinRepository(appDB)
	photoSetRepo := mongo.NewMongoPhotoSetRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	powerliftingRepo := mongo.NewMongoPowerliftingRepository(appDB)
	questionnaireRepo := mongo.NewMongoQuestionnaireRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	clientService := service.NewClientService(
		dailyRepo, weeklyRepo, checkinRepo, photoSetRepo, planRepo,
		powerliftingRepo, questionnaireRepo, fileStorage, cfg.Uploads, loc,
	)
	coachService := service.NewCoachService(
		userRepo, dailyRepo, weeklyRepo, checkinRepo, photoSetRepo, planRepo,
		fileStorage, notifier, cfg.Uploads, cfg.Jobs.HistoryLimit, loc,
	)

	// --- Reminder Scans ---
	scanner := jobs.NewScanner(userRepo, dailyRepo, weeklyRepo, notifier, cfg.Jobs.HistoryLimit, loc)
	scheduler, err := jobs.NewScheduler(scanner, cfg.Jobs, loc)
	if err != nil {
		log.Fatalf("FATAL: Failed to build reminder scheduler: %v", err)
	}
	if cfg.Jobs.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Println("INFO: reminder scheduler disabled by configuration")
	}

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, clientService, coachService, scanner, userRepo)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
