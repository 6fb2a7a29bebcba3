package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
	notifications     *NotificationSender
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, userRepo repositories.UserRepository, notifications *NotificationSender) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		userRepository:    userRepo,
		notifications:     notifications,
	}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.AddComment)
	g.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)
}

// AddComment appends a comment and returns the updated post
func (h *CommentHandler) AddComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}
	userID := middleware.UserID(c)
	comment := &models.Comment{
		AuthorID:     userID,
		AuthorName:   name,
		AuthorAvatar: avatar,
		Text:         req.Text,
	}

	post, err := h.commentRepository.AddComment(ctx, c.Param("id"), comment)
	if err != nil {
		return repoError(err, "Post")
	}

	h.notifications.send(ctx, &models.Notification{
		Type:        models.NotificationComment,
		ActorID:     userID,
		ActorName:   name,
		RecipientID: post.AuthorID,
		TargetID:    post.ID.Hex(),
	})
	return c.JSON(http.StatusCreated, post)
}

// DeleteComment removes a comment. Allowed for the comment author and the post author.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	post, err := h.commentRepository.RemoveComment(c.Request().Context(), c.Param("id"), c.Param("commentId"), middleware.UserID(c))
	if err != nil {
		return repoError(err, "Comment")
	}
	return c.JSON(http.StatusOK, post)
}
