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

const trainingCollectionName = "trainings"

// mongoTrainingRepository implements repository.TrainingRepository
type mongoTrainingRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingRepository creates a new Training repository.
func NewMongoTrainingRepository(db *mongo.Database) repository.TrainingRepository {
	return &mongoTrainingRepository{
		collection: db.Collection(trainingCollectionName),
	}
}

// Create inserts a new training template.
func (r *mongoTrainingRepository) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	if training.UserID == primitive.NilObjectID || training.CycleID == primitive.NilObjectID || training.Name == "" {
		return primitive.NilObjectID, errors.New("training requires userId, cycleId, and name")
	}

	training.ID = primitive.NewObjectID()
	if training.Exercises == nil {
		training.Exercises = []domain.Exercise{}
	}
	now := time.Now().UTC()
	training.CreatedAt = now
	training.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, training)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted training ID")
	}
	return insertedID, nil
}

// GetByIDAndUserID retrieves a single training, scoped by owner.
func (r *mongoTrainingRepository) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Training, error) {
	var training domain.Training
	filter := bson.M{"_id": id, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&training)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &training, nil
}

// GetByUserAndCycle retrieves all trainings of one cycle. The catalog lists
// newest first; the dashboard rotation walks them in creation order.
func (r *mongoTrainingRepository) GetByUserAndCycle(ctx context.Context, userID, cycleID primitive.ObjectID, newestFirst bool) ([]domain.Training, error) {
	filter := bson.M{"userId": userID, "cycleId": cycleID}

	direction := 1
	if newestFirst {
		direction = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: direction}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trainings := []domain.Training{}
	if err = cursor.All(ctx, &trainings); err != nil {
		return nil, err
	}
	return trainings, nil
}

// Update applies the patch to a training. The cycleId in the filter keeps
// writes off archived cycles.
func (r *mongoTrainingRepository) Update(ctx context.Context, id, userID, cycleID primitive.ObjectID, patch repository.TrainingPatch) (*domain.Training, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	filter := bson.M{"_id": id, "userId": userID, "cycleId": cycleID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Training
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a training of the given cycle.
func (r *mongoTrainingRepository) Delete(ctx context.Context, id, userID, cycleID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "userId": userID, "cycleId": cycleID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddExercise appends one exercise to the embedded list. The exercise gets
// its own ObjectID for later targeted update/delete.
func (r *mongoTrainingRepository) AddExercise(ctx context.Context, trainingID, userID, cycleID primitive.ObjectID, exercise domain.Exercise) (*domain.Training, error) {
	exercise.ID = primitive.NewObjectID()

	filter := bson.M{"_id": trainingID, "userId": userID, "cycleId": cycleID}
	update := bson.M{
		"$push": bson.M{"exercises": exercise},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Training
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// UpdateExercise patches one embedded exercise via the positional operator.
// Only fields present in the patch are written.
func (r *mongoTrainingRepository) UpdateExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID, patch repository.ExercisePatch) (*domain.Training, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["exercises.$.name"] = *patch.Name
	}
	if patch.Sets != nil {
		set["exercises.$.sets"] = *patch.Sets
	}
	if patch.Reps != nil {
		set["exercises.$.reps"] = *patch.Reps
	}
	if patch.Technique != nil {
		set["exercises.$.technique"] = *patch.Technique
	}
	if patch.Order != nil {
		set["exercises.$.order"] = *patch.Order
	}
	if patch.TargetWeight != nil {
		set["exercises.$.targetWeight"] = *patch.TargetWeight
	}

	filter := bson.M{
		"_id":           trainingID,
		"userId":        userID,
		"cycleId":       cycleID,
		"exercises._id": exerciseID,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Training
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// RemoveExercise pulls one embedded exercise out of the list. The
// exercises._id clause in the filter makes a miss distinguishable from a
// training that simply lacks that exercise.
func (r *mongoTrainingRepository) RemoveExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID) (*domain.Training, error) {
	filter := bson.M{
		"_id":           trainingID,
		"userId":        userID,
		"cycleId":       cycleID,
		"exercises._id": exerciseID,
	}
	update := bson.M{
		"$pull": bson.M{"exercises": bson.M{"_id": exerciseID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Training
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// EnsureTrainingIndexes creates necessary indexes. Call during startup.
func EnsureTrainingIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "cycleId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
