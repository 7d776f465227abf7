package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Questionnaire is the one-time intake form a client fills in on onboarding.
// Write-once per user (unique userId index).
type Questionnaire struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Goals        string             `bson:"goals,omitempty" json:"goals,omitempty"`
	Injuries     string             `bson:"injuries,omitempty" json:"injuries,omitempty"`
	Experience   string             `bson:"experience,omitempty" json:"experience,omitempty"`
	Availability string             `bson:"availability,omitempty" json:"availability,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
