package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// FriendshipHandler handles friend requests and friend lists
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository // friend cards
	notifications        *NotificationSender
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, userRepo repositories.UserRepository, notifications *NotificationSender) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		userRepository:       userRepo,
		notifications:        notifications,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/user/friend-request/:userId", h.SendFriendRequest)
	g.DELETE("/user/friend-request/:userId", h.DeclineFriendRequest)
	g.POST("/user/friend-accept/:senderId", h.AcceptFriendRequest)
	g.GET("/user/friend-requests", h.GetPendingFriendRequests)
	g.GET("/user/friends", h.GetFriends)
	g.DELETE("/user/friends/:friendId", h.DeleteFriend)
}

// SendFriendRequest asks the target user to become friends
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID := middleware.UserID(c)
	targetID := c.Param("userId")
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a friend request to yourself")
	}
	ctx := c.Request().Context()

	if err := h.friendshipRepository.SendRequest(ctx, userID, targetID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusBadRequest, "You are already friends")
		}
		return repoError(err, "User")
	}

	h.notifications.send(ctx, &models.Notification{
		Type:        models.NotificationFriendRequest,
		ActorID:     userID,
		ActorName:   actorName(c),
		RecipientID: targetID,
		TargetID:    userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request sent"})
}

// AcceptFriendRequest accepts a pending request from senderId
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	userID := middleware.UserID(c)
	senderID := c.Param("senderId")
	ctx := c.Request().Context()

	if err := h.friendshipRepository.AcceptRequest(ctx, userID, senderID); err != nil {
		return repoError(err, "Friend request")
	}

	h.notifications.send(ctx, &models.Notification{
		Type:        models.NotificationFriendAccept,
		ActorID:     userID,
		ActorName:   actorName(c),
		RecipientID: senderID,
		TargetID:    userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request accepted"})
}

// DeclineFriendRequest drops a pending request from userId
func (h *FriendshipHandler) DeclineFriendRequest(c echo.Context) error {
	err := h.friendshipRepository.DeclineRequest(c.Request().Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		return repoError(err, "Friend request")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPendingFriendRequests lists the users waiting for the caller to accept
func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	return h.listOwn(c, func(u *models.User) []string { return u.PendingRequests })
}

// GetFriends lists the caller's friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	return h.listOwn(c, func(u *models.User) []string { return u.Friends })
}

// DeleteFriend unfriends friendId on both sides
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	err := h.friendshipRepository.RemoveFriend(c.Request().Context(), middleware.UserID(c), c.Param("friendId"))
	if err != nil {
		return repoError(err, "Friendship")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FriendshipHandler) listOwn(c echo.Context, ids func(*models.User) []string) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetByAuthID(ctx, middleware.UserID(c))
	if err != nil {
		return repoError(err, "User")
	}
	users, err := h.userRepository.GetByAuthIDs(ctx, ids(user))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, compact(users))
}
