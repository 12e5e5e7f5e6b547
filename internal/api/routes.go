package api

import (
	"net/http"

	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the router. All business routes live
// under /api/v1 and everything except auth requires a valid bearer token.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	cycleService service.CycleService,
	trainingService service.TrainingService,
	workoutService service.WorkoutService,
	dashboardService service.DashboardService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	trainingHandler := NewTrainingHandler(trainingService, cycleService)
	workoutHandler := NewWorkoutHandler(workoutService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", MetricsHandler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/password", authHandler.ChangePassword)

		// --- Profile ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/me", userHandler.GetMe)
			userGroup.PATCH("/me", userHandler.UpdateMe)
			userGroup.POST("/me/avatar", userHandler.RequestAvatarUpload)
		}

		// --- Cycles and Trainings ---
		trainingGroup := protected.Group("/trainings")
		{
			trainingGroup.GET("/cycles", trainingHandler.ListCycles)
			trainingGroup.POST("/cycles/new", trainingHandler.StartNewCycle)

			trainingGroup.GET("", trainingHandler.ListTrainings)
			trainingGroup.POST("", trainingHandler.CreateTraining)
			trainingGroup.PATCH("/:id", trainingHandler.UpdateTraining)
			trainingGroup.DELETE("/:id", trainingHandler.DeleteTraining)

			trainingGroup.POST("/:id/exercises", trainingHandler.AddExercise)
			trainingGroup.PATCH("/:id/exercises/:exerciseId", trainingHandler.UpdateExercise)
			trainingGroup.DELETE("/:id/exercises/:exerciseId", trainingHandler.RemoveExercise)
		}

		// --- Workouts and Dashboard ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("/start/:trainingId", workoutHandler.Start)
			workoutGroup.GET("/active", workoutHandler.GetActive)
			workoutGroup.GET("", workoutHandler.List)
			workoutGroup.POST("/finish", workoutHandler.FinishByBody)

			workoutGroup.GET("/dashboard-stats", dashboardHandler.GetStats)
			workoutGroup.GET("/dashboard/today", dashboardHandler.GetToday)
			workoutGroup.GET("/dashboard/last", dashboardHandler.GetLast)

			workoutGroup.GET("/:id", workoutHandler.GetByID)
			workoutGroup.PATCH("/:id/performance", workoutHandler.UpdatePerformance)
			workoutGroup.PATCH("/:id/finish", workoutHandler.Finish)
		}
	}
}
