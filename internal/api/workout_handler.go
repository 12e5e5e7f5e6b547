package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

type SetPerformedRequest struct {
	Reps   int     `json:"reps" binding:"min=0"`
	Weight float64 `json:"weight" binding:"min=0"`
}

type PerformedExerciseRequest struct {
	ExerciseName  string                `json:"exerciseName" binding:"required,max=120"`
	Order         int                   `json:"order" binding:"min=0"`
	TargetWeight  float64               `json:"targetWeight" binding:"min=0,max=1000"`
	SetsPerformed []SetPerformedRequest `json:"setsPerformed" binding:"dive"`
	Notes         string                `json:"notes" binding:"omitempty,max=300"`
	RPE           *float64              `json:"rpe" binding:"omitempty,min=0,max=10"`
}

type UpdatePerformanceRequest struct {
	PerformedExercises []PerformedExerciseRequest `json:"performedExercises" binding:"required,dive"`
}

type FinishWorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

// --- Handler Methods ---

// Start opens a session from a training template.
func (h *WorkoutHandler) Start(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "trainingId")
	if !ok {
		return
	}

	workout, err := h.workoutService.Start(c.Request.Context(), userID, trainingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutAlreadyActive):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrTrainingNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTrainingReadOnly):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to start workout")
		}
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// GetActive returns the running session. A null body means none is running;
// the client polls this on app start so an absent session is not an error.
func (h *WorkoutHandler) GetActive(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workout, err := h.workoutService.GetActive(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load active workout")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// List returns the caller's session history, newest first.
func (h *WorkoutHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetByID returns one session.
func (h *WorkoutHandler) GetByID(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetByID(c.Request.Context(), userID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout")
		}
		return
	}
	c.JSON(http.StatusOK, workout)
}

// UpdatePerformance replaces the whole performed-exercises log.
func (h *WorkoutHandler) UpdatePerformance(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	performed := make([]domain.PerformedExercise, 0, len(req.PerformedExercises))
	for _, ex := range req.PerformedExercises {
		sets := make([]domain.SetPerformed, 0, len(ex.SetsPerformed))
		for _, set := range ex.SetsPerformed {
			sets = append(sets, domain.SetPerformed{Reps: set.Reps, Weight: set.Weight})
		}
		performed = append(performed, domain.PerformedExercise{
			ExerciseName:  ex.ExerciseName,
			Order:         ex.Order,
			TargetWeight:  ex.TargetWeight,
			SetsPerformed: sets,
			Notes:         ex.Notes,
			RPE:           ex.RPE,
		})
	}

	if err := h.workoutService.UpdatePerformance(c.Request.Context(), userID, workoutID, performed); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update performance")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Finish closes the session. Repeated calls succeed without re-stamping.
func (h *WorkoutHandler) Finish(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	h.finish(c, userID, workoutID)
}

// FinishByBody is the body-addressed variant of Finish kept for clients that
// POST /workouts/finish with {"workoutId": "..."}.
func (h *WorkoutHandler) FinishByBody(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req FinishWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workoutId")
		return
	}

	h.finish(c, userID, workoutID)
}

func (h *WorkoutHandler) finish(c *gin.Context, userID, workoutID primitive.ObjectID) {
	if err := h.workoutService.Finish(c.Request.Context(), userID, workoutID); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to finish workout")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
