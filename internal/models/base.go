package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base holds the fields common to all persisted documents.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewBase returns a Base with a fresh ObjectID and creation timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
