package models

import "time"

// Notification types
const (
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationFollow        = "follow"
	NotificationReferral      = "referral"
	NotificationFriendRequest = "friend_request"
	NotificationFriendAccept  = "friend_accept"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:20;index"`
	ActorID     string    `json:"actor_id" gorm:"size:128;index"`
	ActorName   string    `json:"actor_name" gorm:"size:120"`
	RecipientID string    `json:"recipient_id" gorm:"size:128;index"`
	TargetID    string    `json:"target_id" gorm:"size:64"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// GroupedNotifications buckets a recipient's notifications by age
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}

// GroupNotifications buckets ns relative to the calendar day of now. This week
// covers the seven days before yesterday. Input order is kept in each bucket.
func GroupNotifications(ns []Notification, now time.Time) *GroupedNotifications {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &GroupedNotifications{
		Today:     []Notification{},
		Yesterday: []Notification{},
		ThisWeek:  []Notification{},
		Older:     []Notification{},
	}
	for _, n := range ns {
		switch {
		case !n.CreatedAt.Before(todayStart):
			g.Today = append(g.Today, n)
		case !n.CreatedAt.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !n.CreatedAt.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}
