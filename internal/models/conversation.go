package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a direct or group chat thread
type Conversation struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Members     []string           `json:"members" bson:"members"`
	IsGroup     bool               `json:"is_group" bson:"is_group"`
	GroupName   string             `json:"group_name,omitempty" bson:"group_name,omitempty"`
	AdminID     string             `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	DirectKey   string             `json:"-" bson:"direct_key,omitempty"`
	LastMessage *MessagePreview    `json:"last_message,omitempty" bson:"last_message,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// MessagePreview is the denormalized last message shown in the conversation list
type MessagePreview struct {
	Text      string    `json:"text" bson:"text"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	MediaType string    `json:"media_type" bson:"media_type"`
	SentAt    time.Time `json:"sent_at" bson:"sent_at"`
}

// DirectKey identifies the one direct conversation between two users regardless of order
func DirectKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// HasMember reports whether userID belongs to the conversation
func (c *Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type CreateConversationRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=80"`
	Members []string `json:"members" validate:"required,min=1,dive,required"`
}
