package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PowerliftingEntry is a client-recorded lift result.
type PowerliftingEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Lift      string             `bson:"lift" json:"lift"` // e.g. "squat", "bench", "deadlift"
	WeightKg  float64            `bson:"weightKg" json:"weightKg"`
	Reps      int                `bson:"reps" json:"reps"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
