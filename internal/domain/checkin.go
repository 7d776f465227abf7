package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckinRecord is a coach-authored periodic body-composition assessment.
// Only the coach (or an admin) may create, edit, or delete one.
type CheckinRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Date        string             `bson:"date" json:"date"` // YYYY-MM-DD
	Weight      *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	MuscleMass  *float64           `bson:"muscleMass,omitempty" json:"muscleMass,omitempty"`
	FatMass     *float64           `bson:"fatMass,omitempty" json:"fatMass,omitempty"`
	VisceralFat *float64           `bson:"visceralFat,omitempty" json:"visceralFat,omitempty"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	// PrivateNote is visible to coaches only; stripped before any
	// client-facing response.
	PrivateNote string    `bson:"privateNote,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
