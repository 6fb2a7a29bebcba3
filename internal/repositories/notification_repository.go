package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyxdrift/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, recipientID string, now time.Time) (*models.GroupedNotifications, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *postgresNotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// Migrate creates or updates the notifications table
func (r *postgresNotificationRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Notification{})
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := []models.Notification{}
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// groupedLimit caps how many recent notifications the grouped view loads
const groupedLimit = 200

// GetGrouped loads the recipient's most recent notifications and buckets them
// into today, yesterday, this week and older
func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID string, now time.Time) (*models.GroupedNotifications, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(groupedLimit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return models.GroupNotifications(notifications, now), nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, notificationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("notification: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if notification.RecipientID != recipientID {
		return fmt.Errorf("notification: %w", ErrForbidden)
	}
	return r.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).Update("is_read", true)
	return res.RowsAffected, res.Error
}
