package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"
)

type workoutFixture struct {
	store        *memStore
	cycleRepo    repository.CycleRepository
	trainingRepo repository.TrainingRepository
	workoutRepo  repository.WorkoutRepository
	cycles       CycleService
	trainings    TrainingService
	svc          WorkoutService
	userID       primitive.ObjectID
}

func newWorkoutFixture() *workoutFixture {
	store := newMemStore()
	cycleRepo := newFakeCycleRepo(store)
	trainingRepo := newFakeTrainingRepo(store)
	workoutRepo := newFakeWorkoutRepo(store)
	cycles := NewCycleService(cycleRepo)
	return &workoutFixture{
		store:        store,
		cycleRepo:    cycleRepo,
		trainingRepo: trainingRepo,
		workoutRepo:  workoutRepo,
		cycles:       cycles,
		trainings:    NewTrainingService(trainingRepo, cycleRepo, cycles),
		svc:          NewWorkoutService(workoutRepo, trainingRepo, cycles),
		userID:       primitive.NewObjectID(),
	}
}

func (f *workoutFixture) createTrainingWithExercise(t *testing.T, name string) *domain.Training {
	t.Helper()
	ctx := context.Background()

	training, err := f.trainings.Create(ctx, f.userID, name, "")
	require.NoError(t, err)

	weight := 60.0
	training, err = f.trainings.AddExercise(ctx, f.userID, training.ID, domain.Exercise{
		Name:         "Squat",
		Sets:         3,
		Reps:         "10",
		TargetWeight: &weight,
		Order:        0,
	})
	require.NoError(t, err)
	return training
}

func TestStartWorkoutFreezesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	workout, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)
	require.Equal(t, domain.WorkoutActive, workout.Status)
	require.Equal(t, training.ID, workout.TrainingID)
	require.Equal(t, "Leg Day", workout.TrainingName)
	require.Equal(t, training.CycleID, workout.CycleID)
	require.Len(t, workout.ExercisesSnapshot, 1)
	require.Equal(t, "Squat", workout.ExercisesSnapshot[0].Name)
	require.Empty(t, workout.PerformedExercises)

	// Template edits after the start never leak into the snapshot.
	newName := "Front Squat"
	_, err = f.trainings.UpdateExercise(ctx, f.userID, training.ID, training.Exercises[0].ID,
		repository.ExercisePatch{Name: &newName})
	require.NoError(t, err)

	reloaded, err := f.svc.GetByID(ctx, f.userID, workout.ID)
	require.NoError(t, err)
	require.Equal(t, "Squat", reloaded.ExercisesSnapshot[0].Name)
}

func TestStartSecondWorkoutConflicts(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	_, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, f.userID, training.ID)
	require.ErrorIs(t, err, ErrWorkoutAlreadyActive)
}

func TestStartUnknownTraining(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()

	_, err := f.svc.Start(ctx, f.userID, primitive.NewObjectID())
	require.ErrorIs(t, err, ErrTrainingNotFound)
}

func TestStartArchivedCycleTrainingIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	// Archive the cycle in place; the next active cycle is created lazily
	// and the old training no longer belongs to it.
	for _, c := range f.store.cycles {
		if c.UserID == f.userID && c.Status == domain.CycleActive {
			c.Status = domain.CycleArchived
		}
	}

	_, err := f.svc.Start(ctx, f.userID, training.ID)
	require.ErrorIs(t, err, ErrTrainingReadOnly)
}

func TestGetActiveReturnsNilWhenNone(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()

	workout, err := f.svc.GetActive(ctx, f.userID)
	require.NoError(t, err)
	require.Nil(t, workout)
}

func TestUpdatePerformanceSanitizes(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	workout, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)

	rpe := -2.0
	err = f.svc.UpdatePerformance(ctx, f.userID, workout.ID, []domain.PerformedExercise{{
		ExerciseName: "Squat",
		Order:        -1,
		TargetWeight: -60,
		Notes:        "knee felt fine",
		RPE:          &rpe,
		SetsPerformed: []domain.SetPerformed{
			{Reps: -5, Weight: -10},
			{Reps: 10, Weight: 60},
		},
	}})
	require.NoError(t, err)

	reloaded, err := f.svc.GetByID(ctx, f.userID, workout.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.PerformedExercises, 1)

	performed := reloaded.PerformedExercises[0]
	require.Equal(t, 0, performed.Order)
	require.Equal(t, 0.0, performed.TargetWeight)
	require.Equal(t, "knee felt fine", performed.Notes)
	require.NotNil(t, performed.RPE)
	require.Equal(t, 0.0, *performed.RPE)
	require.Equal(t, domain.SetPerformed{Reps: 0, Weight: 0}, performed.SetsPerformed[0])
	require.Equal(t, domain.SetPerformed{Reps: 10, Weight: 60}, performed.SetsPerformed[1])
}

func TestUpdatePerformanceAfterFinish(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	workout, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Finish(ctx, f.userID, workout.ID))

	// A finished session stays editable so a typo in the last set can be
	// fixed.
	err = f.svc.UpdatePerformance(ctx, f.userID, workout.ID, []domain.PerformedExercise{{
		ExerciseName:  "Squat",
		SetsPerformed: []domain.SetPerformed{{Reps: 8, Weight: 70}},
	}})
	require.NoError(t, err)

	reloaded, err := f.svc.GetByID(ctx, f.userID, workout.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.PerformedExercises, 1)
}

func TestFinishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	workout, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Finish(ctx, f.userID, workout.ID))

	finished, err := f.svc.GetByID(ctx, f.userID, workout.ID)
	require.NoError(t, err)
	require.True(t, finished.IsFinished())
	require.NotNil(t, finished.FinishedAt)
	stamped := *finished.FinishedAt

	require.NoError(t, f.svc.Finish(ctx, f.userID, workout.ID))

	again, err := f.svc.GetByID(ctx, f.userID, workout.ID)
	require.NoError(t, err)
	require.True(t, stamped.Equal(*again.FinishedAt))
}

func TestFinishUnknownWorkout(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()

	require.ErrorIs(t, f.svc.Finish(ctx, f.userID, primitive.NewObjectID()), ErrWorkoutNotFound)
}

func TestFinishFreesTheActiveSlot(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture()
	training := f.createTrainingWithExercise(t, "Leg Day")

	first, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Finish(ctx, f.userID, first.ID))

	second, err := f.svc.Start(ctx, f.userID, training.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	workouts, err := f.svc.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	require.Equal(t, second.ID, workouts[0].ID) // newest first
}
