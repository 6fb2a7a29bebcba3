package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media kinds a post can carry
const (
	MediaNone  = "none"
	MediaPhoto = "photo"
	MediaVideo = "video"
	MediaReel  = "reel"
)

// Post types
const (
	PostTypePost  = "post"
	PostTypeReels = "reels"
)

// Post represents a feed post or reel stored in MongoDB
type Post struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID     string             `json:"author_id" bson:"author_id"`
	AuthorName   string             `json:"author_name" bson:"author_name"`
	AuthorAvatar string             `json:"author_avatar" bson:"author_avatar"`
	Text         string             `json:"text" bson:"text"`
	Media        string             `json:"media,omitempty" bson:"media,omitempty"`
	MediaType    string             `json:"media_type" bson:"media_type"`
	PublicID     string             `json:"public_id,omitempty" bson:"public_id,omitempty"`
	PostType     string             `json:"post_type" bson:"post_type"`
	Likes        []string           `json:"likes" bson:"likes"`
	Comments     []Comment          `json:"comments" bson:"comments"`
	Views        int64              `json:"views" bson:"views"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Comment is embedded in its post
type Comment struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	AuthorID     string             `json:"author_id" bson:"author_id"`
	AuthorName   string             `json:"author_name" bson:"author_name"`
	AuthorAvatar string             `json:"author_avatar" bson:"author_avatar"`
	Text         string             `json:"text" bson:"text"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// IsLikedBy reports whether userID is in the like set
func (p *Post) IsLikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the embedded comment with the given hex id
func (p *Post) FindComment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID.Hex() == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// CreatePostRequest needs text, media, or both
type CreatePostRequest struct {
	Text      string `json:"text" validate:"required_without=Media,max=2200"`
	Media     string `json:"media,omitempty" validate:"omitempty,url"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=none photo video reel"`
	PublicID  string `json:"public_id,omitempty"`
}

type CreateReelRequest struct {
	Text     string `json:"text" validate:"max=2200"`
	MediaURL string `json:"media_url" validate:"required,url"`
	PublicID string `json:"public_id,omitempty"`
}

type UpdatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2200"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
