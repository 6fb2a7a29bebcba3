package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story represents a user's story stored in MongoDB. The collection carries a
// TTL index on expires_at, so the store deletes it once the window passes.
type Story struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	UserName      string             `json:"user_name" bson:"user_name"`
	UserAvatar    string             `json:"user_avatar" bson:"user_avatar"`
	MediaURL      string             `json:"media_url" bson:"media_url"`
	Text          string             `json:"text" bson:"text"`
	Music         string             `json:"music,omitempty" bson:"music,omitempty"`
	Filter        string             `json:"filter" bson:"filter"`
	OnlyMessenger bool               `json:"only_messenger" bson:"only_messenger"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt     time.Time          `json:"expires_at" bson:"expires_at"`
}

// ActiveAt reports whether the story is still visible at t. The TTL monitor
// only sweeps periodically, so reads apply the same cut-off themselves.
func (s *Story) ActiveAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

type CreateStoryRequest struct {
	MediaURL      string `json:"media_url" validate:"required,url"`
	Text          string `json:"text" validate:"max=200"`
	Music         string `json:"music,omitempty" validate:"max=200"`
	Filter        string `json:"filter,omitempty" validate:"max=50"`
	OnlyMessenger bool   `json:"only_messenger"`
}
