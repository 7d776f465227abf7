package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyEditWindow is how long after creation a daily record stays editable.
// Once the window has passed the record is immutable.
const DailyEditWindow = 2 * time.Hour

// DailyRecord is a client's self-reported entry for one civil day.
// There is at most one per user per day (unique userId+date index).
//
// Optional fields are pointers: an absent value means "no data this day"
// and is excluded from the corresponding derived-metric predicate. It is
// never folded into zero or false.
type DailyRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Date          string             `bson:"date" json:"date"` // YYYY-MM-DD in the canonical timezone
	Weight        *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	WaterLiters   *float64           `bson:"waterLiters,omitempty" json:"waterLiters,omitempty"`
	Steps         *int               `bson:"steps,omitempty" json:"steps,omitempty"`
	Workout       *bool              `bson:"workout,omitempty" json:"workout,omitempty"`
	DietCompliant *bool              `bson:"dietCompliant,omitempty" json:"dietCompliant,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Editable reports whether the record can still be modified at the given instant.
func (r *DailyRecord) Editable(now time.Time) bool {
	return now.Before(r.CreatedAt.Add(DailyEditWindow))
}
