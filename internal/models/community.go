package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community privacy settings
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Community is a named group with its own chat
type Community struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Avatar      string             `json:"avatar" bson:"avatar"`
	Banner      string             `json:"banner" bson:"banner"`
	Creator     string             `json:"creator" bson:"creator"`
	Moderators  []string           `json:"moderators" bson:"moderators"`
	Members     []string           `json:"members" bson:"members"`
	Privacy     string             `json:"privacy" bson:"privacy"`
	Category    string             `json:"category" bson:"category"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasMember reports whether userID belongs to the community
func (c *Community) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL slug from a community name
func Slugify(name string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-"), "-")
}

type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Description string `json:"description" validate:"max=300"`
	Avatar      string `json:"avatar,omitempty" validate:"omitempty,url"`
	Banner      string `json:"banner,omitempty" validate:"omitempty,url"`
	Privacy     string `json:"privacy,omitempty" validate:"omitempty,oneof=public private"`
	Category    string `json:"category,omitempty" validate:"max=40"`
}
