package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// MessageHandler handles direct and group messaging over REST. Messages sent
// here are persisted; real-time delivery is the socket's job.
type MessageHandler struct {
	conversationRepository repositories.ConversationRepository
	messageRepository      repositories.MessageRepository
	userRepository         repositories.UserRepository
	log                    *zap.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, userRepo repositories.UserRepository, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		conversationRepository: convRepo,
		messageRepository:      msgRepo,
		userRepository:         userRepo,
		log:                    log,
	}
}

// RegisterMessageRoutes registers messaging routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages/conversation", h.GetOrCreateConversation)
	g.POST("/messages/group", h.CreateGroup)
	g.GET("/messages/conversations", h.GetConversations)
	g.POST("/messages/message", h.SendMessage)
	g.GET("/messages/message/:id", h.GetMessages)
	g.PUT("/messages/message/:id/seen", h.MarkSeen)
	g.DELETE("/messages/message/:id", h.DeleteMessage)
}

// GetOrCreateConversation returns the caller's direct conversation with the receiver
func (h *MessageHandler) GetOrCreateConversation(c echo.Context) error {
	var req models.CreateConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID := middleware.UserID(c)
	if req.ReceiverID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
	}

	conv, err := h.conversationRepository.GetOrCreateDirect(c.Request().Context(), userID, req.ReceiverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

// CreateGroup starts a group conversation administered by the caller
func (h *MessageHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID := middleware.UserID(c)

	members := []string{userID}
	seen := map[string]bool{userID: true}
	for _, m := range req.Members {
		if !seen[m] {
			seen[m] = true
			members = append(members, m)
		}
	}
	if len(members) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "A group needs at least one other member")
	}

	conv := &models.Conversation{
		Members:   members,
		GroupName: req.Name,
		AdminID:   userID,
	}
	if err := h.conversationRepository.CreateGroup(c.Request().Context(), conv); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, conv)
}

// GetConversations lists the caller's conversations, most recent first
func (h *MessageHandler) GetConversations(c echo.Context) error {
	convs, err := h.conversationRepository.ListForMember(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convs)
}

// SendMessage stores a message in a conversation the caller belongs to
func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	conv, err := h.memberConversation(c, req.ConversationID)
	if err != nil {
		return err
	}

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}
	msg := &models.Message{
		ConversationID: &conv.ID,
		SenderID:       userID,
		SenderName:     name,
		SenderAvatar:   avatar,
		Text:           req.Text,
		Media:          req.Media,
		MediaType:      req.MediaType,
	}
	if err := h.messageRepository.CreateMessage(ctx, msg); err != nil {
		return err
	}

	if err := h.conversationRepository.UpdateLastMessage(ctx, conv.ID, msg.Preview()); err != nil {
		h.log.Warn("failed to update conversation preview",
			zap.String("conversation_id", conv.ID.Hex()),
			zap.Error(err),
		)
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetMessages returns a conversation's history in chronological order
func (h *MessageHandler) GetMessages(c echo.Context) error {
	conv, err := h.memberConversation(c, c.Param("id"))
	if err != nil {
		return err
	}

	_, limit, skip := pagination(c)
	msgs, err := h.messageRepository.ListByConversation(c.Request().Context(), conv.ID, skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// MarkSeen records that the caller has seen a message. The repository rejects
// callers outside the message's conversation or community.
func (h *MessageHandler) MarkSeen(c echo.Context) error {
	msg, err := h.messageRepository.MarkSeen(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return repoError(err, "Message")
	}
	return c.JSON(http.StatusOK, msg)
}

// DeleteMessage deletes one of the caller's messages for everyone
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	msg, err := h.messageRepository.DeleteForEveryone(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return repoError(err, "Message")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Message deleted", "id": msg.ID.Hex()})
}

func (h *MessageHandler) memberConversation(c echo.Context, id string) (*models.Conversation, error) {
	conv, err := h.conversationRepository.GetConversationByID(c.Request().Context(), id)
	if err != nil {
		return nil, repoError(err, "Conversation")
	}
	if !conv.HasMember(middleware.UserID(c)) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not a member of this conversation")
	}
	return conv, nil
}
