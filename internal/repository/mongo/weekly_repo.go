package mongo

import (
	"context"
	"errors"
	"time"

	"coachtrack/internal/domain"
	"coachtrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weeklyCollectionName = "weeklyFeedback"

type mongoWeeklyRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoWeeklyRecordRepository(db *mongo.Database) repository.WeeklyRecordRepository {
	return &mongoWeeklyRecordRepository{
		collection: db.Collection(weeklyCollectionName),
	}
}

// Create inserts a write-once weekly record. A duplicate week for the same
// user maps to ErrConflict.
func (r *mongoWeeklyRecordRepository) Create(ctx context.Context, rec *domain.WeeklyRecord) (primitive.ObjectID, error) {
	if rec.UserID.IsZero() || rec.Week == "" {
		return primitive.NilObjectID, errors.New("weekly record user ID and week are required")
	}

	rec.ID = primitive.NewObjectID()
	rec.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoWeeklyRecordRepository) ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "week": week}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoWeeklyRecordRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.WeeklyRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "week", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.WeeklyRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureWeeklyRecordIndexes creates necessary indexes for the weeklyFeedback collection.
func EnsureWeeklyRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "week", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
