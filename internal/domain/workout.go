package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for workout session lifecycle
type WorkoutStatus string

const (
	WorkoutActive   WorkoutStatus = "active"
	WorkoutFinished WorkoutStatus = "finished"
)

// ExerciseSnapshot is a point-in-time copy of a training exercise, frozen
// when the workout starts. Later edits to the template never touch it.
type ExerciseSnapshot struct {
	Name         string   `bson:"name" json:"name"`
	Sets         int      `bson:"sets" json:"sets"`
	Reps         string   `bson:"reps" json:"reps"`
	Order        int      `bson:"order" json:"order"`
	Technique    string   `bson:"technique,omitempty" json:"technique,omitempty"`
	TargetWeight *float64 `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
}

// SetPerformed is one logged set of a performed exercise.
type SetPerformed struct {
	Reps   int     `bson:"reps" json:"reps"`
	Weight float64 `bson:"weight" json:"weight"`
}

// PerformedExercise is the per-exercise performance log of a workout.
type PerformedExercise struct {
	ExerciseName  string         `bson:"exerciseName" json:"exerciseName"`
	Order         int            `bson:"order" json:"order"`
	TargetWeight  float64        `bson:"targetWeight" json:"targetWeight"`
	SetsPerformed []SetPerformed `bson:"setsPerformed" json:"setsPerformed"`
	Notes         string         `bson:"notes,omitempty" json:"notes,omitempty"`
	RPE           *float64       `bson:"rpe,omitempty" json:"rpe,omitempty"`
}

// Workout is one concrete performance of a Training. The exercise snapshot
// is immutable after creation; the performed-exercises log is replaced as a
// whole by performance updates. At most one workout per user is active.
type Workout struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	TrainingID   primitive.ObjectID `bson:"trainingId" json:"trainingId"`
	TrainingName string             `bson:"trainingName" json:"trainingName"` // Denormalized for history display
	CycleID      primitive.ObjectID `bson:"cycleId" json:"cycleId"`           // Cycle active at start time
	Status       WorkoutStatus      `bson:"status" json:"status"`
	StartedAt    time.Time          `bson:"startedAt" json:"startedAt"`
	FinishedAt   *time.Time         `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`

	ExercisesSnapshot  []ExerciseSnapshot  `bson:"exercisesSnapshot" json:"exercisesSnapshot"`
	PerformedExercises []PerformedExercise `bson:"performedExercises" json:"performedExercises"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (w *Workout) IsFinished() bool {
	return w.Status == WorkoutFinished
}
