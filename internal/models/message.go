package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message media kinds
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageVideo = "video"
	MessageVoice = "voice"
	MessageFile  = "file"
)

// Message belongs to exactly one conversation or one community
type Message struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID *primitive.ObjectID `json:"conversation_id,omitempty" bson:"conversation_id,omitempty"`
	CommunityID    *primitive.ObjectID `json:"community_id,omitempty" bson:"community_id,omitempty"`
	SenderID       string              `json:"sender_id" bson:"sender_id"`
	SenderName     string              `json:"sender_name" bson:"sender_name"`
	SenderAvatar   string              `json:"sender_avatar" bson:"sender_avatar"`
	Text           string              `json:"text,omitempty" bson:"text,omitempty"`
	Media          string              `json:"media,omitempty" bson:"media,omitempty"`
	MediaType      string              `json:"media_type" bson:"media_type"`
	SeenBy         []SeenMarker        `json:"seen_by" bson:"seen_by"`
	IsEdited       bool                `json:"is_edited" bson:"is_edited"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

// SeenMarker records when a recipient viewed a message
type SeenMarker struct {
	UserID string    `json:"user_id" bson:"user_id"`
	SeenAt time.Time `json:"seen_at" bson:"seen_at"`
}

// SeenAtBy returns when userID saw the message
func (m *Message) SeenAtBy(userID string) (time.Time, bool) {
	for _, s := range m.SeenBy {
		if s.UserID == userID {
			return s.SeenAt, true
		}
	}
	return time.Time{}, false
}

// Preview builds the conversation list entry for this message
func (m *Message) Preview() *MessagePreview {
	return &MessagePreview{
		Text:      m.Text,
		SenderID:  m.SenderID,
		MediaType: m.MediaType,
		SentAt:    m.CreatedAt,
	}
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"required,len=24,hexadecimal"`
	Text           string `json:"text" validate:"required_without=Media,max=4000"`
	Media          string `json:"media,omitempty" validate:"omitempty,url"`
	MediaType      string `json:"media_type,omitempty" validate:"omitempty,oneof=text image video voice file"`
}

type CommunityMessageRequest struct {
	Text      string `json:"text" validate:"required_without=Media,max=4000"`
	Media     string `json:"media,omitempty" validate:"omitempty,url"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=text image video voice file"`
}
