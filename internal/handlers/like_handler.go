package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// LikeHandler handles like toggles on posts
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	notifications  *NotificationSender
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, notifications *NotificationSender) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo, notifications: notifications}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or unlikes it when already liked, and returns
// the updated post. The author is notified of new likes only.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()

	post, err := h.likeRepository.ToggleLike(ctx, c.Param("id"), userID)
	if err != nil {
		return repoError(err, "Post")
	}

	if post.IsLikedBy(userID) {
		h.notifications.send(ctx, &models.Notification{
			Type:        models.NotificationLike,
			ActorID:     userID,
			ActorName:   actorName(c),
			RecipientID: post.AuthorID,
			TargetID:    post.ID.Hex(),
		})
	}
	return c.JSON(http.StatusOK, post)
}

func actorName(c echo.Context) string {
	if id := middleware.Identity(c); id != nil {
		return id.Name
	}
	return ""
}
