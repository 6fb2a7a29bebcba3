package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	notifications    *NotificationSender
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notifications *NotificationSender) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		notifications:    notifications,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/user/follow/:targetId", h.ToggleFollow)
	g.GET("/user/:userId/followers", h.GetFollowers)
	g.GET("/user/:userId/following", h.GetFollowing)
}

// ToggleFollow follows the target, or unfollows when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	userID := middleware.UserID(c)
	targetID := c.Param("targetId")
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}
	ctx := c.Request().Context()

	following, err := h.followRepository.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		return repoError(err, "User")
	}

	if following {
		h.notifications.send(ctx, &models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     userID,
			ActorName:   actorName(c),
			RecipientID: targetID,
			TargetID:    userID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// GetFollowers lists the users following userId
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listRelated(c, func(u *models.User) []string { return u.Followers })
}

// GetFollowing lists the users userId follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listRelated(c, func(u *models.User) []string { return u.Following })
}

func (h *FollowHandler) listRelated(c echo.Context, ids func(*models.User) []string) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetByAuthID(ctx, c.Param("userId"))
	if err != nil {
		return repoError(err, "User")
	}
	users, err := h.userRepository.GetByAuthIDs(ctx, ids(user))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, compact(users))
}
