package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// CommunityPublisher pushes persisted community messages to present members
type CommunityPublisher interface {
	PublishCommunityMessage(ctx context.Context, members []string, msg *models.Message)
}

// CommunityHandler handles community-related HTTP requests
type CommunityHandler struct {
	communityRepository repositories.CommunityRepository
	messageRepository   repositories.MessageRepository
	userRepository      repositories.UserRepository
	publisher           CommunityPublisher
}

// NewCommunityHandler creates a new CommunityHandler. publisher may be nil.
func NewCommunityHandler(communityRepo repositories.CommunityRepository, msgRepo repositories.MessageRepository, userRepo repositories.UserRepository, publisher CommunityPublisher) *CommunityHandler {
	return &CommunityHandler{
		communityRepository: communityRepo,
		messageRepository:   msgRepo,
		userRepository:      userRepo,
		publisher:           publisher,
	}
}

// RegisterCommunityRoutes registers community routes
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group) {
	g.POST("/communities/create", h.CreateCommunity)
	g.GET("/communities", h.ListCommunities)
	g.GET("/communities/:id", h.GetCommunity)
	g.POST("/communities/:id/join", h.ToggleJoin)
	g.POST("/communities/:id/messages", h.PostMessage)
	g.GET("/communities/:id/messages", h.GetMessages)
}

// CreateCommunity creates a community owned by the caller. Names are unique.
func (h *CommunityHandler) CreateCommunity(c echo.Context) error {
	var req models.CreateCommunityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if models.Slugify(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Community name needs at least one letter or digit")
	}

	community := &models.Community{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
		Banner:      req.Banner,
		Creator:     middleware.UserID(c),
		Privacy:     req.Privacy,
		Category:    req.Category,
	}
	if err := h.communityRepository.CreateCommunity(c.Request().Context(), community); err != nil {
		return repoError(err, "Community")
	}
	return c.JSON(http.StatusCreated, community)
}

// ListCommunities lists communities, optionally filtered by ?q=
func (h *CommunityHandler) ListCommunities(c echo.Context) error {
	_, limit, skip := pagination(c)
	communities, err := h.communityRepository.ListCommunities(c.Request().Context(), c.QueryParam("q"), skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, communities)
}

// GetCommunity retrieves a community by ID
func (h *CommunityHandler) GetCommunity(c echo.Context) error {
	community, err := h.communityRepository.GetCommunityByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(err, "Community")
	}
	return c.JSON(http.StatusOK, community)
}

// ToggleJoin joins the community, or leaves it when already a member
func (h *CommunityHandler) ToggleJoin(c echo.Context) error {
	joined, community, err := h.communityRepository.ToggleMembership(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return repoError(err, "Community")
	}
	return c.JSON(http.StatusOK, echo.Map{"joined": joined, "community": community})
}

// PostMessage stores a community chat message and pushes it to present members
func (h *CommunityHandler) PostMessage(c echo.Context) error {
	var req models.CommunityMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	community, err := h.communityRepository.GetCommunityByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "Community")
	}
	if !community.HasMember(userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Join the community to post")
	}

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}
	msg := &models.Message{
		CommunityID:  &community.ID,
		SenderID:     userID,
		SenderName:   name,
		SenderAvatar: avatar,
		Text:         req.Text,
		Media:        req.Media,
		MediaType:    req.MediaType,
	}
	if err := h.messageRepository.CreateMessage(ctx, msg); err != nil {
		return err
	}

	if h.publisher != nil {
		h.publisher.PublishCommunityMessage(ctx, community.Members, msg)
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetMessages returns community chat history in chronological order
func (h *CommunityHandler) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	community, err := h.communityRepository.GetCommunityByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "Community")
	}
	if community.Privacy == models.PrivacyPrivate && !community.HasMember(middleware.UserID(c)) {
		return echo.NewHTTPError(http.StatusForbidden, "This community is private")
	}

	_, limit, skip := pagination(c)
	msgs, err := h.messageRepository.ListByCommunity(ctx, community.ID, skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}
