package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier pushes a stored notification to its recipient in real time
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
}

// bindAndValidate decodes the body into req and runs its validation tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// pagination reads page and limit query params, returning 1-based page,
// clamped limit and the matching skip
func pagination(c echo.Context) (page, limit int, skip int64) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, int64(page-1) * int64(limit)
}

// repoError maps repository sentinels to HTTP errors. Anything else is passed
// through to the central error handler.
func repoError(err error, resource string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, resource+" not found")
	case errors.Is(err, repositories.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to modify this "+strings.ToLower(resource))
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid "+strings.ToLower(resource)+" ID")
	case errors.Is(err, repositories.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusBadRequest, resource+" already exists")
	}
	return err
}

// author resolves the caller's display name and avatar for denormalized fields
func author(c echo.Context, users repositories.UserRepository) (name, avatar string, err error) {
	user, err := users.GetByAuthID(c.Request().Context(), middleware.UserID(c))
	if err == nil {
		return user.Name, user.Avatar, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return "", "", err
	}
	if id := middleware.Identity(c); id != nil {
		return id.Name, id.Picture, nil
	}
	return "", "", nil
}

// NotificationSender persists a notification and pushes it to the recipient.
// Failures are logged; the triggering action has already succeeded.
type NotificationSender struct {
	repo   repositories.NotificationRepository
	pusher Notifier
	log    *zap.Logger
}

// NewNotificationSender returns a sender. pusher may be nil.
func NewNotificationSender(repo repositories.NotificationRepository, pusher Notifier, log *zap.Logger) *NotificationSender {
	return &NotificationSender{repo: repo, pusher: pusher, log: log}
}

func (s *NotificationSender) send(ctx context.Context, n *models.Notification) {
	if s == nil || n.ActorID == n.RecipientID {
		return
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.Warn("failed to store notification",
			zap.String("type", n.Type),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
		return
	}
	if s.pusher != nil {
		s.pusher.Notify(ctx, n)
	}
}

// NewHTTPErrorHandler answers HTTP errors as echo does and hides everything
// else behind a generic 500 after logging it
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			c.Echo().DefaultHTTPErrorHandler(he, c)
			return
		}

		log.Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("user_id", middleware.UserID(c)),
			zap.Error(err),
		)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(http.StatusInternalServerError)
			return
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
}
