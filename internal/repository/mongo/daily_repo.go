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

const dailyCollectionName = "dailyFeedback"

type mongoDailyRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoDailyRecordRepository(db *mongo.Database) repository.DailyRecordRepository {
	return &mongoDailyRecordRepository{
		collection: db.Collection(dailyCollectionName),
	}
}

// Create inserts a new daily record. The unique userId+date index turns a
// duplicate day into ErrConflict.
func (r *mongoDailyRecordRepository) Create(ctx context.Context, rec *domain.DailyRecord) (primitive.ObjectID, error) {
	if rec.UserID.IsZero() || rec.Date == "" {
		return primitive.NilObjectID, errors.New("daily record user ID and date are required")
	}

	rec.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

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

func (r *mongoDailyRecordRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.DailyRecord, error) {
	var rec domain.DailyRecord
	filter := bson.M{"userId": userID, "date": date}

	err := r.collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Update replaces the mutable fields of an existing record. The edit window
// is enforced by the service layer before this call.
func (r *mongoDailyRecordRepository) Update(ctx context.Context, rec *domain.DailyRecord) error {
	filter := bson.M{"_id": rec.ID, "userId": rec.UserID}
	update := bson.M{
		"$set": bson.M{
			"weight":        rec.Weight,
			"waterLiters":   rec.WaterLiters,
			"steps":         rec.Steps,
			"workout":       rec.Workout,
			"dietCompliant": rec.DietCompliant,
			"notes":         rec.Notes,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListRecent returns up to limit records for the user, most recent first.
// Date keys sort lexicographically in chronological order.
func (r *mongoDailyRecordRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.DailyRecord, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.DailyRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureDailyRecordIndexes creates necessary indexes for the dailyFeedback collection.
func EnsureDailyRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
