package mongo

import (
	"context"
	"errors"
	"time"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout session. The partial unique index on
// (userId, status=active) rejects a second active session for the same user.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.TrainingID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires userId and trainingId")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if workout.Status == "" {
		workout.Status = domain.WorkoutActive
	}
	if workout.StartedAt.IsZero() {
		workout.StartedAt = now
	}
	if workout.ExercisesSnapshot == nil {
		workout.ExercisesSnapshot = []domain.ExerciseSnapshot{}
	}
	if workout.PerformedExercises == nil {
		workout.PerformedExercises = []domain.PerformedExercise{}
	}
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrActiveConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByIDAndUserID retrieves a single workout, scoped by owner.
func (r *mongoWorkoutRepository) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetActiveByUserID returns the user's running session, or ErrNotFound.
func (r *mongoWorkoutRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"userId": userID, "status": domain.WorkoutActive}

	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByUserID returns all of a user's workouts, newest first.
func (r *mongoWorkoutRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// ReplacePerformance overwrites the whole performed-exercises log.
func (r *mongoWorkoutRepository) ReplacePerformance(ctx context.Context, id, userID primitive.ObjectID, performed []domain.PerformedExercise) error {
	if performed == nil {
		performed = []domain.PerformedExercise{}
	}
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{"$set": bson.M{
		"performedExercises": performed,
		"updatedAt":          time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Finish flips an active session to finished and stamps finishedAt. The
// status clause in the filter means finishing an already-finished workout
// matches nothing and never re-stamps; the caller treats that as success.
func (r *mongoWorkoutRepository) Finish(ctx context.Context, id, userID primitive.ObjectID, finishedAt time.Time) error {
	filter := bson.M{"_id": id, "userId": userID, "status": domain.WorkoutActive}
	update := bson.M{"$set": bson.M{
		"status":     domain.WorkoutFinished,
		"finishedAt": finishedAt,
		"updatedAt":  time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetLastFinished returns the most recently finished session of one cycle.
func (r *mongoWorkoutRepository) GetLastFinished(ctx context.Context, userID, cycleID primitive.ObjectID) (*domain.Workout, error) {
	filter := bson.M{
		"userId":  userID,
		"cycleId": cycleID,
		"status":  domain.WorkoutFinished,
	}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "finishedAt", Value: -1}})

	var workout domain.Workout
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// CountFinishedInRange counts finished sessions with finishedAt in [from, to).
func (r *mongoWorkoutRepository) CountFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) (int64, error) {
	filter := bson.M{
		"userId":     userID,
		"cycleId":    cycleID,
		"status":     domain.WorkoutFinished,
		"finishedAt": bson.M{"$gte": from, "$lt": to},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// ListFinishedInRange returns finished sessions with finishedAt in [from, to).
func (r *mongoWorkoutRepository) ListFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error) {
	filter := bson.M{
		"userId":     userID,
		"cycleId":    cycleID,
		"status":     domain.WorkoutFinished,
		"finishedAt": bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
// The partial unique index enforces "one active session per user"; the
// compound index serves the dashboard queries.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.WorkoutActive)}),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "cycleId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "finishedAt", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
