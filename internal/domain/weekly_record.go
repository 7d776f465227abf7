package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeeklyRecord is a client's reflection for one ISO calendar week.
// Write-once: at most one per user per week, enforced by a unique
// userId+week index and a conflict check before insert.
type WeeklyRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Week        string             `bson:"week" json:"week"` // YYYY-W## in the canonical timezone
	Wins        string             `bson:"wins,omitempty" json:"wins,omitempty"`
	Struggles   string             `bson:"struggles,omitempty" json:"struggles,omitempty"`
	Energy      string             `bson:"energy,omitempty" json:"energy,omitempty"`
	Adjustments string             `bson:"adjustments,omitempty" json:"adjustments,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
