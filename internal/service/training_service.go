package service

import (
	"context"
	"errors"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTrainingNotFound = errors.New("training not found")
	ErrTrainingReadOnly = errors.New("training belongs to an archived cycle and is read-only")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("training validation failed")
)

// TrainingService manages training templates and their embedded exercises.
// Every mutation is gated on the training belonging to the caller's
// currently active cycle; archived cycles are browsable but immutable.
type TrainingService interface {
	FindAll(ctx context.Context, userID primitive.ObjectID, cycleID *primitive.ObjectID) ([]domain.Training, error)
	Create(ctx context.Context, userID primitive.ObjectID, name, description string) (*domain.Training, error)
	Update(ctx context.Context, userID, trainingID primitive.ObjectID, patch repository.TrainingPatch) (*domain.Training, error)
	Delete(ctx context.Context, userID, trainingID primitive.ObjectID) error

	AddExercise(ctx context.Context, userID, trainingID primitive.ObjectID, exercise domain.Exercise) (*domain.Training, error)
	UpdateExercise(ctx context.Context, userID, trainingID, exerciseID primitive.ObjectID, patch repository.ExercisePatch) (*domain.Training, error)
	RemoveExercise(ctx context.Context, userID, trainingID, exerciseID primitive.ObjectID) (*domain.Training, error)
}

// trainingService implements the TrainingService interface.
type trainingService struct {
	trainingRepo repository.TrainingRepository
	cycleRepo    repository.CycleRepository
	cycles       CycleService
}

// NewTrainingService creates a new instance of trainingService.
func NewTrainingService(trainingRepo repository.TrainingRepository, cycleRepo repository.CycleRepository, cycles CycleService) TrainingService {
	return &trainingService{
		trainingRepo: trainingRepo,
		cycleRepo:    cycleRepo,
		cycles:       cycles,
	}
}

// assertActiveCycleTraining loads the training and verifies it belongs to
// the caller's active cycle. Ownership misses surface as not-found; a match
// from an archived cycle surfaces as the read-only violation.
func (s *trainingService) assertActiveCycleTraining(ctx context.Context, userID, trainingID primitive.ObjectID) (*domain.Training, primitive.ObjectID, error) {
	active, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}

	training, err := s.trainingRepo.GetByIDAndUserID(ctx, trainingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, primitive.NilObjectID, ErrTrainingNotFound
		}
		return nil, primitive.NilObjectID, err
	}

	if training.CycleID != active.ID {
		return nil, primitive.NilObjectID, ErrTrainingReadOnly
	}
	return training, active.ID, nil
}

// FindAll lists trainings. With a cycle ID it is a read-only browse of that
// cycle's history (ownership checked); without one it lists the active
// cycle's catalog. Both newest first.
func (s *trainingService) FindAll(ctx context.Context, userID primitive.ObjectID, cycleID *primitive.ObjectID) ([]domain.Training, error) {
	if cycleID != nil {
		if _, err := s.cycleRepo.GetByIDAndUserID(ctx, *cycleID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCycleNotFound
			}
			return nil, err
		}
		return s.trainingRepo.GetByUserAndCycle(ctx, userID, *cycleID, true)
	}

	active, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.trainingRepo.GetByUserAndCycle(ctx, userID, active.ID, true)
}

// Create adds a new training template to the active cycle.
func (s *trainingService) Create(ctx context.Context, userID primitive.ObjectID, name, description string) (*domain.Training, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}

	active, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	training := &domain.Training{
		UserID:      userID,
		CycleID:     active.ID,
		Name:        name,
		Description: description,
		Exercises:   []domain.Exercise{},
	}
	if _, err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, err
	}
	return training, nil
}

// Update patches name/description of an active-cycle training.
func (s *trainingService) Update(ctx context.Context, userID, trainingID primitive.ObjectID, patch repository.TrainingPatch) (*domain.Training, error) {
	_, activeCycleID, err := s.assertActiveCycleTraining(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.trainingRepo.Update(ctx, trainingID, userID, activeCycleID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an active-cycle training.
func (s *trainingService) Delete(ctx context.Context, userID, trainingID primitive.ObjectID) error {
	_, activeCycleID, err := s.assertActiveCycleTraining(ctx, userID, trainingID)
	if err != nil {
		return err
	}

	if err := s.trainingRepo.Delete(ctx, trainingID, userID, activeCycleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}
	return nil
}

// AddExercise appends an exercise to an active-cycle training.
func (s *trainingService) AddExercise(ctx context.Context, userID, trainingID primitive.ObjectID, exercise domain.Exercise) (*domain.Training, error) {
	if exercise.Name == "" || exercise.Sets < 1 || exercise.Reps == "" || exercise.Order < 0 {
		return nil, ErrValidationFailed
	}

	_, activeCycleID, err := s.assertActiveCycleTraining(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.trainingRepo.AddExercise(ctx, trainingID, userID, activeCycleID, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdateExercise patches one embedded exercise; only present fields change.
func (s *trainingService) UpdateExercise(ctx context.Context, userID, trainingID, exerciseID primitive.ObjectID, patch repository.ExercisePatch) (*domain.Training, error) {
	training, activeCycleID, err := s.assertActiveCycleTraining(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}
	if !trainingHasExercise(training, exerciseID) {
		return nil, ErrExerciseNotFound
	}

	updated, err := s.trainingRepo.UpdateExercise(ctx, trainingID, userID, activeCycleID, exerciseID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return updated, nil
}

// RemoveExercise deletes one embedded exercise.
func (s *trainingService) RemoveExercise(ctx context.Context, userID, trainingID, exerciseID primitive.ObjectID) (*domain.Training, error) {
	training, activeCycleID, err := s.assertActiveCycleTraining(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}
	if !trainingHasExercise(training, exerciseID) {
		return nil, ErrExerciseNotFound
	}

	updated, err := s.trainingRepo.RemoveExercise(ctx, trainingID, userID, activeCycleID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return updated, nil
}

func trainingHasExercise(training *domain.Training, exerciseID primitive.ObjectID) bool {
	for i := range training.Exercises {
		if training.Exercises[i].ID == exerciseID {
			return true
		}
	}
	return false
}
