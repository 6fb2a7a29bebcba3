package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member of the network, keyed by the identity provider subject
type User struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthID          string             `json:"auth_id" bson:"auth_id"`
	Name            string             `json:"name" bson:"name"`
	Nickname        string             `json:"nickname,omitempty" bson:"nickname,omitempty"`
	Email           string             `json:"email,omitempty" bson:"email,omitempty"`
	Password        string             `json:"-" bson:"password,omitempty"`
	Avatar          string             `json:"avatar" bson:"avatar"`
	CoverImg        string             `json:"cover_img" bson:"cover_img"`
	Bio             string             `json:"bio" bson:"bio"`
	Location        string             `json:"location" bson:"location"`
	Workplace       string             `json:"workplace" bson:"workplace"`
	IsVerified      bool               `json:"is_verified" bson:"is_verified"`
	GhostMode       bool               `json:"ghost_mode" bson:"ghost_mode"`
	// AntiScreenshot asks clients to block screen capture of this user's content
	AntiScreenshot  bool               `json:"anti_screenshot" bson:"anti_screenshot"`
	Followers       []string           `json:"followers" bson:"followers"`
	Following       []string           `json:"following" bson:"following"`
	Friends         []string           `json:"friends" bson:"friends"`
	PendingRequests []string           `json:"pending_requests" bson:"pending_requests"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the public card shown next to posts, search results and followers
type UserCompact struct {
	AuthID     string `json:"auth_id" bson:"auth_id"`
	Name       string `json:"name" bson:"name"`
	Nickname   string `json:"nickname,omitempty" bson:"nickname,omitempty"`
	Avatar     string `json:"avatar" bson:"avatar"`
	Bio        string `json:"bio" bson:"bio"`
	IsVerified bool   `json:"is_verified" bson:"is_verified"`
	Followers  int    `json:"followers_count" bson:"-"`
}

// ToCompact trims a user down to its public card
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		AuthID:     u.AuthID,
		Name:       u.Name,
		Nickname:   u.Nickname,
		Avatar:     u.Avatar,
		Bio:        u.Bio,
		IsVerified: u.IsVerified,
		Followers:  len(u.Followers),
	}
}

// IsFollowedBy reports whether userID is in the follower set
func (u *User) IsFollowedBy(userID string) bool {
	for _, id := range u.Followers {
		if id == userID {
			return true
		}
	}
	return false
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest holds the editable profile fields. Name and auth id are immutable.
type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,min=2,max=30,alphanumunicode"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
	CoverImg  *string `json:"cover_img,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Workplace *string `json:"workplace,omitempty" validate:"omitempty,max=100"`
}

// UpdateSettingsRequest toggles privacy settings. At least one must be present.
type UpdateSettingsRequest struct {
	GhostMode      *bool `json:"ghost_mode"`
	AntiScreenshot *bool `json:"anti_screenshot"`
}
