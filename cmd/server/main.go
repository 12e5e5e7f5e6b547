package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcycle/backend/internal/api"
	"fitcycle/backend/internal/config"
	"fitcycle/backend/internal/repository/mongo"
	"fitcycle/backend/internal/service"
	"fitcycle/backend/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Println("Starting FitCycle Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

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
	// The partial unique indexes on cycles and workouts back the one-active
	// invariants, so index creation failures must be visible.
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureUserIndexes(ctx, appDB.Collection("users")); err != nil {
			log.Printf("ERROR: Failed to ensure user indexes: %v", err)
		}
		if err := mongo.EnsureCycleIndexes(ctx, appDB.Collection("training_cycles")); err != nil {
			log.Printf("ERROR: Failed to ensure cycle indexes: %v", err)
		}
		if err := mongo.EnsureTrainingIndexes(ctx, appDB.Collection("trainings")); err != nil {
			log.Printf("ERROR: Failed to ensure training indexes: %v", err)
		}
		if err := mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts")); err != nil {
			log.Printf("ERROR: Failed to ensure workout indexes: %v", err)
		}
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	cycleRepo := mongo.NewMongoCycleRepository(appDB)
	trainingRepo := mongo.NewMongoTrainingRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, fileStorage)
	cycleService := service.NewCycleService(cycleRepo)
	trainingService := service.NewTrainingService(trainingRepo, cycleRepo, cycleService)
	workoutService := service.NewWorkoutService(workoutRepo, trainingRepo, cycleService)
	dashboardService := service.NewDashboardService(workoutRepo, trainingRepo, cycleService)

	// --- Initialize Gin Engine ---
	router := gin.Default()
	router.Use(api.MetricsMiddleware())

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		userService,
		cycleService,
		trainingService,
		workoutService,
		dashboardService,
	)

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
