package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CycleStatus type for training cycle lifecycle
type CycleStatus string

const (
	CycleActive   CycleStatus = "active"
	CycleArchived CycleStatus = "archived"
)

// TrainingCycle is a user's time-bounded collection of training templates.
// At most one cycle per user is active at any time; the rest are archived
// history and everything under them is read-only.
type TrainingCycle struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Status    CycleStatus        `bson:"status" json:"status"`
	StartedAt time.Time          `bson:"startedAt" json:"startedAt"`
	EndedAt   *time.Time         `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *TrainingCycle) IsActive() bool {
	return c.Status == CycleActive
}
