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

const photoSetCollectionName = "photoSets"

type mongoPhotoSetRepository struct {
	collection *mongo.Collection
}

func NewMongoPhotoSetRepository(db *mongo.Database) repository.PhotoSetRepository {
	return &mongoPhotoSetRepository{
		collection: db.Collection(photoSetCollectionName),
	}
}

// Create inserts a photo set. A duplicate ISO week for the same user maps
// to ErrConflict.
func (r *mongoPhotoSetRepository) Create(ctx context.Context, set *domain.PhotoSet) (primitive.ObjectID, error) {
	if set.UserID.IsZero() || set.Week == "" {
		return primitive.NilObjectID, errors.New("photo set user ID and week are required")
	}

	set.ID = primitive.NewObjectID()
	set.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, set)
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

func (r *mongoPhotoSetRepository) ExistsForWeek(ctx context.Context, userID primitive.ObjectID, week string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "week": week}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoPhotoSetRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PhotoSet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "week", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.PhotoSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *mongoPhotoSetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PhotoSet, error) {
	var set domain.PhotoSet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

// EnsurePhotoSetIndexes creates necessary indexes for the photoSets collection.
func EnsurePhotoSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "week", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
