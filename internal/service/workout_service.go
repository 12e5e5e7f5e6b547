package service

import (
	"context"
	"errors"
	"time"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrWorkoutAlreadyActive = errors.New("an active workout already exists")
)

// WorkoutService drives the per-user session state machine:
// NONE -> ACTIVE -> FINISHED (terminal).
type WorkoutService interface {
	Start(ctx context.Context, userID, trainingID primitive.ObjectID) (*domain.Workout, error)
	GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	UpdatePerformance(ctx context.Context, userID, workoutID primitive.ObjectID, performed []domain.PerformedExercise) error
	Finish(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	trainingRepo repository.TrainingRepository
	cycles       CycleService
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, trainingRepo repository.TrainingRepository, cycles CycleService) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		trainingRepo: trainingRepo,
		cycles:       cycles,
	}
}

// Start creates a new active session from a training template. It fails when
// a session is already running, when the training is missing or foreign, or
// when the training sits in an archived cycle. The template's exercises are
// frozen into the session's snapshot.
func (s *workoutService) Start(ctx context.Context, userID, trainingID primitive.ObjectID) (*domain.Workout, error) {
	if _, err := s.workoutRepo.GetActiveByUserID(ctx, userID); err == nil {
		return nil, ErrWorkoutAlreadyActive
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	training, err := s.trainingRepo.GetByIDAndUserID(ctx, trainingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	active, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if training.CycleID != active.ID {
		return nil, ErrTrainingReadOnly
	}

	snapshot := make([]domain.ExerciseSnapshot, 0, len(training.Exercises))
	for _, ex := range training.Exercises {
		snapshot = append(snapshot, domain.ExerciseSnapshot{
			Name:         ex.Name,
			Sets:         ex.Sets,
			Reps:         ex.Reps,
			Order:        ex.Order,
			Technique:    ex.Technique,
			TargetWeight: ex.TargetWeight,
		})
	}

	cycleID := training.CycleID
	if cycleID == primitive.NilObjectID {
		cycleID = active.ID
	}

	workout := &domain.Workout{
		UserID:             userID,
		TrainingID:         training.ID,
		TrainingName:       training.Name,
		CycleID:            cycleID,
		Status:             domain.WorkoutActive,
		StartedAt:          time.Now().UTC(),
		ExercisesSnapshot:  snapshot,
		PerformedExercises: []domain.PerformedExercise{},
	}

	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		// Lost the race against a concurrent start; the unique index kept
		// the invariant.
		if errors.Is(err, repository.ErrActiveConflict) {
			return nil, ErrWorkoutAlreadyActive
		}
		return nil, err
	}
	return workout, nil
}

// GetActive returns the running session, or nil when there is none.
func (s *workoutService) GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// List returns the caller's session history, newest first.
func (s *workoutService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.ListByUserID(ctx, userID)
}

// GetByID returns one session, scoped to the caller.
func (s *workoutService) GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByIDAndUserID(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// UpdatePerformance replaces the whole performed-exercises log with a
// sanitized copy: negative numbers clamp to zero instead of rejecting the
// request. Finished sessions stay editable so a user can fix a typo in a
// set logged moments before finishing.
func (s *workoutService) UpdatePerformance(ctx context.Context, userID, workoutID primitive.ObjectID, performed []domain.PerformedExercise) error {
	if _, err := s.workoutRepo.GetByIDAndUserID(ctx, workoutID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}

	sanitized := sanitizePerformed(performed)
	if err := s.workoutRepo.ReplacePerformance(ctx, workoutID, userID, sanitized); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// Finish flips the session to FINISHED and stamps finishedAt. Finishing an
// already-finished session is a no-op success and never re-stamps.
func (s *workoutService) Finish(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	workout, err := s.workoutRepo.GetByIDAndUserID(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	if workout.IsFinished() {
		return nil
	}

	if err := s.workoutRepo.Finish(ctx, workoutID, userID, time.Now().UTC()); err != nil {
		// Another request finished it between the read and the write.
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func sanitizePerformed(performed []domain.PerformedExercise) []domain.PerformedExercise {
	sanitized := make([]domain.PerformedExercise, 0, len(performed))
	for _, ex := range performed {
		clean := domain.PerformedExercise{
			ExerciseName: ex.ExerciseName,
			Order:        clampInt(ex.Order),
			TargetWeight: clampFloat(ex.TargetWeight),
			Notes:        ex.Notes,
		}
		if ex.RPE != nil {
			rpe := clampFloat(*ex.RPE)
			clean.RPE = &rpe
		}
		clean.SetsPerformed = make([]domain.SetPerformed, 0, len(ex.SetsPerformed))
		for _, set := range ex.SetsPerformed {
			clean.SetsPerformed = append(clean.SetsPerformed, domain.SetPerformed{
				Reps:   clampInt(set.Reps),
				Weight: clampFloat(set.Weight),
			})
		}
		sanitized = append(sanitized, clean)
	}
	return sanitized
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
