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

const questionnaireCollectionName = "questionnaire"

type mongoQuestionnaireRepository struct {
	collection *mongo.Collection
}

func NewMongoQuestionnaireRepository(db *mongo.Database) repository.QuestionnaireRepository {
	return &mongoQuestionnaireRepository{
		collection: db.Collection(questionnaireCollectionName),
	}
}

// Create inserts the write-once intake form. A second submission for the
// same user maps to ErrConflict.
func (r *mongoQuestionnaireRepository) Create(ctx context.Context, q *domain.Questionnaire) (primitive.ObjectID, error) {
	if q.UserID.IsZero() {
		return primitive.NilObjectID, errors.New("questionnaire user ID is required")
	}

	q.ID = primitive.NewObjectID()
	q.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, q)
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

func (r *mongoQuestionnaireRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Questionnaire, error) {
	var q domain.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// EnsureQuestionnaireIndexes creates necessary indexes for the questionnaire collection.
func EnsureQuestionnaireIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
