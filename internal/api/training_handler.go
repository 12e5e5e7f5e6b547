package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"
	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingHandler holds the training and cycle service dependencies.
type TrainingHandler struct {
	trainingService service.TrainingService
	cycleService    service.CycleService
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingService service.TrainingService, cycleService service.CycleService) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
		cycleService:    cycleService,
	}
}

// --- Request Structs ---

type CreateTrainingRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

type UpdateTrainingRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=80"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type AddExerciseRequest struct {
	Name         string   `json:"name" binding:"required,max=120"`
	Sets         int      `json:"sets" binding:"required,min=1,max=20"`
	Reps         string   `json:"reps" binding:"required,max=50"`
	Technique    string   `json:"technique" binding:"omitempty,max=500"`
	Order        *int     `json:"order" binding:"required,min=0"`
	TargetWeight *float64 `json:"targetWeight" binding:"omitempty,min=0,max=1000"`
}

// UpdateExerciseRequest carries only the fields to overwrite.
type UpdateExerciseRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=120"`
	Sets         *int     `json:"sets" binding:"omitempty,min=1,max=20"`
	Reps         *string  `json:"reps" binding:"omitempty,max=50"`
	Technique    *string  `json:"technique" binding:"omitempty,max=500"`
	Order        *int     `json:"order" binding:"omitempty,min=0"`
	TargetWeight *float64 `json:"targetWeight" binding:"omitempty,min=0,max=1000"`
}

// --- Cycle Endpoints ---

// ListCycles returns the caller's cycles, active first, for history browsing.
func (h *TrainingHandler) ListCycles(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	cycles, err := h.cycleService.ListCycles(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list cycles")
		return
	}
	c.JSON(http.StatusOK, cycles)
}

// StartNewCycle archives the current cycle, deletes its trainings for good
// and returns a fresh active cycle. There is no undo.
func (h *TrainingHandler) StartNewCycle(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	cycle, err := h.cycleService.StartNewCycle(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to start a new cycle")
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// --- Training Endpoints ---

// ListTrainings returns the active cycle's catalog, or a given cycle's
// read-only history when ?cycleId= is present.
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var cycleID *primitive.ObjectID
	if raw := c.Query("cycleId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid cycleId")
			return
		}
		cycleID = &id
	}

	trainings, err := h.trainingService.FindAll(c.Request.Context(), userID, cycleID)
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to list trainings")
		}
		return
	}
	c.JSON(http.StatusOK, trainings)
}

// CreateTraining adds a template to the active cycle.
func (h *TrainingHandler) CreateTraining(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	training, err := h.trainingService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create training")
		}
		return
	}
	c.JSON(http.StatusCreated, training)
}

// UpdateTraining patches name/description of an active-cycle training.
func (h *TrainingHandler) UpdateTraining(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patch := repository.TrainingPatch{Name: req.Name, Description: req.Description}
	training, err := h.trainingService.Update(c.Request.Context(), userID, trainingID, patch)
	if err != nil {
		h.handleTrainingError(c, err, "Failed to update training")
		return
	}
	c.JSON(http.StatusOK, training)
}

// DeleteTraining removes an active-cycle training.
func (h *TrainingHandler) DeleteTraining(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.trainingService.Delete(c.Request.Context(), userID, trainingID); err != nil {
		h.handleTrainingError(c, err, "Failed to delete training")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- Exercise Endpoints ---

// AddExercise appends one exercise to a training.
func (h *TrainingHandler) AddExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise := domain.Exercise{
		Name:         req.Name,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Technique:    req.Technique,
		Order:        *req.Order,
		TargetWeight: req.TargetWeight,
	}

	training, err := h.trainingService.AddExercise(c.Request.Context(), userID, trainingID, exercise)
	if err != nil {
		h.handleTrainingError(c, err, "Failed to add exercise")
		return
	}
	c.JSON(http.StatusCreated, training)
}

// UpdateExercise patches one embedded exercise; absent fields stay as-is.
func (h *TrainingHandler) UpdateExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patch := repository.ExercisePatch{
		Name:         req.Name,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Technique:    req.Technique,
		Order:        req.Order,
		TargetWeight: req.TargetWeight,
	}

	training, err := h.trainingService.UpdateExercise(c.Request.Context(), userID, trainingID, exerciseID, patch)
	if err != nil {
		h.handleTrainingError(c, err, "Failed to update exercise")
		return
	}
	c.JSON(http.StatusOK, training)
}

// RemoveExercise deletes one embedded exercise.
func (h *TrainingHandler) RemoveExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainingID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	training, err := h.trainingService.RemoveExercise(c.Request.Context(), userID, trainingID, exerciseID)
	if err != nil {
		h.handleTrainingError(c, err, "Failed to remove exercise")
		return
	}
	c.JSON(http.StatusOK, training)
}

// handleTrainingError maps training service errors to HTTP statuses.
func (h *TrainingHandler) handleTrainingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTrainingNotFound), errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTrainingReadOnly), errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
