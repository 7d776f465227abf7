package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// User represents a user in the system (a Client, a Coach, or an Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Client-specific ---
	// Liters per day. When nil the target is derived from the most recent
	// recorded body weight (5%), falling back to a fixed default.
	WaterTargetLiters *float64 `bson:"waterTargetLiters,omitempty" json:"waterTargetLiters,omitempty"`

	// Denormalized check-in dates, refreshed whenever a coach records or
	// removes a check-in. Read by the dashboard and the check-in-due scan.
	LastCheckinAt *time.Time `bson:"lastCheckinAt,omitempty" json:"lastCheckinAt,omitempty"`
	NextCheckinAt *time.Time `bson:"nextCheckinAt,omitempty" json:"nextCheckinAt,omitempty"`

	// The coach managing this client.
	CoachID *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`

	// --- Coach-specific ---
	// ObjectIDs of clients managed by this coach.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
