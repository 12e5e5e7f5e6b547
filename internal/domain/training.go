package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is one movement definition embedded in a Training. Each element
// carries its own ObjectID so it can be updated or deleted individually;
// the Order field is authoritative for display, not the array position.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Sets         int                `bson:"sets" json:"sets"`
	Reps         string             `bson:"reps" json:"reps"` // Free-form, e.g. "12-10-8"
	Technique    string             `bson:"technique,omitempty" json:"technique,omitempty"`
	TargetWeight *float64           `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	Order        int                `bson:"order" json:"order"`
}

// Training is a named, reusable template of ordered exercises.
// It belongs to exactly one user and one cycle.
type Training struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	CycleID     primitive.ObjectID `bson:"cycleId" json:"cycleId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []Exercise         `bson:"exercises" json:"exercises"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
