package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender type for the user profile
type Gender string

// Define constants for genders
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// DefaultWeeklyGoalDays is used when registration does not provide a goal.
const DefaultWeeklyGoalDays = 4

// User represents a registered account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Stored lowercase, unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Weekly activity goal, 1-7 days.
	WeeklyGoalDays int `bson:"weeklyGoalDays" json:"weeklyGoalDays"`

	// Profile fields. Weight/height are pointers so "never set" survives
	// round trips; AvatarURL is empty until an avatar is uploaded or linked.
	Gender    Gender   `bson:"gender" json:"gender"`
	WeightKg  *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm  *float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	AvatarURL string   `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
}
