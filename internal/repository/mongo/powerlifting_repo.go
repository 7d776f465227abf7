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

const powerliftingCollectionName = "powerlifting"

type mongoPowerliftingRepository struct {
	collection *mongo.Collection
}

func NewMongoPowerliftingRepository(db *mongo.Database) repository.PowerliftingRepository {
	return &mongoPowerliftingRepository{
		collection: db.Collection(powerliftingCollectionName),
	}
}

func (r *mongoPowerliftingRepository) Create(ctx context.Context, entry *domain.PowerliftingEntry) (primitive.ObjectID, error) {
	if entry.UserID.IsZero() || entry.Lift == "" {
		return primitive.NilObjectID, errors.New("entry user ID and lift are required")
	}

	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoPowerliftingRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PowerliftingEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.PowerliftingEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsurePowerliftingIndexes creates necessary indexes for the powerlifting collection.
func EnsurePowerliftingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
