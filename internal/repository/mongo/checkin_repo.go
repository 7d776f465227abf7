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

const checkinCollectionName = "checkins"

type mongoCheckinRepository struct {
	collection *mongo.Collection
}

func NewMongoCheckinRepository(db *mongo.Database) repository.CheckinRepository {
	return &mongoCheckinRepository{
		collection: db.Collection(checkinCollectionName),
	}
}

func (r *mongoCheckinRepository) Create(ctx context.Context, rec *domain.CheckinRecord) (primitive.ObjectID, error) {
	if rec.UserID.IsZero() || rec.CoachID.IsZero() || rec.Date == "" {
		return primitive.NilObjectID, errors.New("check-in user ID, coach ID and date are required")
	}

	rec.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoCheckinRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CheckinRecord, error) {
	var rec domain.CheckinRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *mongoCheckinRepository) Update(ctx context.Context, rec *domain.CheckinRecord) error {
	filter := bson.M{"_id": rec.ID, "coachId": rec.CoachID}
	update := bson.M{
		"$set": bson.M{
			"date":        rec.Date,
			"weight":      rec.Weight,
			"muscleMass":  rec.MuscleMass,
			"fatMass":     rec.FatMass,
			"visceralFat": rec.VisceralFat,
			"comment":     rec.Comment,
			"privateNote": rec.PrivateNote,
			"updatedAt":   time.Now().UTC(),
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

// Delete removes a check-in; the coachId filter keeps one coach from
// deleting another coach's assessment.
func (r *mongoCheckinRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoCheckinRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.CheckinRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.CheckinRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureCheckinIndexes creates necessary indexes for the checkins collection.
func EnsureCheckinIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
