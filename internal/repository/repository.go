package repository

import (
	"context"
	"time"

	"fitcycle/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicate      = RepositoryError("duplicate key")
	ErrUpdateFailed   = RepositoryError("update failed")
	ErrDeleteFailed   = RepositoryError("delete failed")
	ErrActiveConflict = RepositoryError("active document already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserProfilePatch carries the profile fields a caller wants to change.
// Nil fields are left untouched (field-presence semantics, not "null clears").
type UserProfilePatch struct {
	WeeklyGoalDays *int
	Gender         *domain.Gender
	WeightKg       *float64
	HeightCm       *float64
	AvatarURL      *string
}

// TrainingPatch carries the training template fields a caller wants to change.
type TrainingPatch struct {
	Name        *string
	Description *string
}

// ExercisePatch carries the embedded exercise fields a caller wants to change.
type ExercisePatch struct {
	Name         *string
	Sets         *int
	Reps         *string
	Technique    *string
	Order        *int
	TargetWeight *float64
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch UserProfilePatch) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// CycleRepository defines the interface for interacting with training cycle data.
type CycleRepository interface {
	Create(ctx context.Context, cycle *domain.TrainingCycle) (primitive.ObjectID, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error)
	GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.TrainingCycle, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingCycle, error)

	// ReplaceActive performs the destructive cycle reset as one atomic unit:
	// delete the current cycle's trainings, delete legacy trainings without a
	// cycle reference, archive the current cycle, and create a fresh active
	// one. Returns the new active cycle.
	ReplaceActive(ctx context.Context, userID, currentCycleID primitive.ObjectID) (*domain.TrainingCycle, error)
}

// TrainingRepository defines the interface for interacting with training
// templates and their embedded exercises. Mutating methods take the cycle ID
// in their filter so writes only ever land on trainings of that cycle.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error)
	GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Training, error)
	GetByUserAndCycle(ctx context.Context, userID, cycleID primitive.ObjectID, newestFirst bool) ([]domain.Training, error)
	Update(ctx context.Context, id, userID, cycleID primitive.ObjectID, patch TrainingPatch) (*domain.Training, error)
	Delete(ctx context.Context, id, userID, cycleID primitive.ObjectID) error

	AddExercise(ctx context.Context, trainingID, userID, cycleID primitive.ObjectID, exercise domain.Exercise) (*domain.Training, error)
	UpdateExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID, patch ExercisePatch) (*domain.Training, error)
	RemoveExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID) (*domain.Training, error)
}

// WorkoutRepository defines the interface for interacting with workout sessions.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)

	ReplacePerformance(ctx context.Context, id, userID primitive.ObjectID, performed []domain.PerformedExercise) error
	Finish(ctx context.Context, id, userID primitive.ObjectID, finishedAt time.Time) error

	GetLastFinished(ctx context.Context, userID, cycleID primitive.ObjectID) (*domain.Workout, error)
	CountFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) (int64, error)
	ListFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error)
}
