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

const cycleCollectionName = "training_cycles"

// mongoCycleRepository implements repository.CycleRepository. It also holds
// the trainings collection because the cycle reset deletes trainings and
// archives the cycle inside one transaction.
type mongoCycleRepository struct {
	collection *mongo.Collection
	trainings  *mongo.Collection
}

// NewMongoCycleRepository creates a new TrainingCycle repository.
func NewMongoCycleRepository(db *mongo.Database) repository.CycleRepository {
	return &mongoCycleRepository{
		collection: db.Collection(cycleCollectionName),
		trainings:  db.Collection(trainingCollectionName),
	}
}

// Create inserts a new cycle. The partial unique index on (userId, status=active)
// rejects a second active cycle for the same user; callers get ErrActiveConflict
// and should re-read the active cycle.
func (r *mongoCycleRepository) Create(ctx context.Context, cycle *domain.TrainingCycle) (primitive.ObjectID, error) {
	if cycle.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("cycle requires userId")
	}

	cycle.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if cycle.Status == "" {
		cycle.Status = domain.CycleActive
	}
	if cycle.StartedAt.IsZero() {
		cycle.StartedAt = now
	}
	cycle.CreatedAt = now
	cycle.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, cycle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrActiveConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted cycle ID")
	}
	return insertedID, nil
}

// GetActiveByUserID returns the user's active cycle, or ErrNotFound.
func (r *mongoCycleRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	var cycle domain.TrainingCycle
	filter := bson.M{"userId": userID, "status": domain.CycleActive}

	err := r.collection.FindOne(ctx, filter).Decode(&cycle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cycle, nil
}

// GetByIDAndUserID returns one cycle, scoped by owner.
func (r *mongoCycleRepository) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	var cycle domain.TrainingCycle
	filter := bson.M{"_id": id, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&cycle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cycle, nil
}

// ListByUserID returns all of a user's cycles, active first, then newest.
func (r *mongoCycleRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingCycle, error) {
	filter := bson.M{"userId": userID}
	// "active" sorts before "archived", so ascending status puts the active
	// cycle on top; within each status newest startedAt first.
	findOptions := options.Find().SetSort(bson.D{
		{Key: "status", Value: 1},
		{Key: "startedAt", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	cycles := []domain.TrainingCycle{}
	if err = cursor.All(ctx, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

// ReplaceActive runs the destructive reset as a single transaction:
// purge the current cycle's trainings, purge legacy trainings without a
// cycle reference, archive the current cycle and insert a fresh active one.
// A mid-sequence failure aborts the whole reset.
func (r *mongoCycleRepository) ReplaceActive(ctx context.Context, userID, currentCycleID primitive.ObjectID) (*domain.TrainingCycle, error) {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()

		if _, err := r.trainings.DeleteMany(sc, bson.M{"userId": userID, "cycleId": currentCycleID}); err != nil {
			return nil, err
		}

		orphanFilter := bson.M{
			"userId": userID,
			"$or": bson.A{
				bson.M{"cycleId": bson.M{"$exists": false}},
				bson.M{"cycleId": nil},
			},
		}
		if _, err := r.trainings.DeleteMany(sc, orphanFilter); err != nil {
			return nil, err
		}

		archive := bson.M{"$set": bson.M{
			"status":    domain.CycleArchived,
			"endedAt":   now,
			"updatedAt": now,
		}}
		res, err := r.collection.UpdateOne(sc,
			bson.M{"_id": currentCycleID, "userId": userID, "status": domain.CycleActive},
			archive,
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, repository.ErrNotFound
		}

		fresh := &domain.TrainingCycle{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Status:    domain.CycleActive,
			StartedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := r.collection.InsertOne(sc, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	cycle, ok := result.(*domain.TrainingCycle)
	if !ok {
		return nil, errors.New("failed to convert replaced cycle")
	}
	return cycle, nil
}

// EnsureCycleIndexes creates necessary indexes. Call during startup.
// The partial unique index is what makes "one active cycle per user" hold
// under concurrent get-or-create calls.
func EnsureCycleIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.CycleActive)}),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
