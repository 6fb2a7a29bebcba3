package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// MediaRemover deletes hosted media that belonged to a removed post
type MediaRemover interface {
	Destroy(ctx context.Context, publicID string) error
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	media          MediaRemover
	log            *zap.Logger
}

// NewPostHandler creates a new PostHandler. media may be nil.
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, media MediaRemover, log *zap.Logger) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		media:          media,
		log:            log,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.POST("/posts/reels", h.CreateReel)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/view", h.ViewPost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" && req.Media == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post needs text or media")
	}

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaNone
		if req.Media != "" {
			mediaType = models.MediaPhoto
		}
	}
	post := &models.Post{
		AuthorID:     middleware.UserID(c),
		AuthorName:   name,
		AuthorAvatar: avatar,
		Text:         req.Text,
		Media:        req.Media,
		MediaType:    mediaType,
		PublicID:     req.PublicID,
		PostType:     models.PostTypePost,
	}
	if mediaType == models.MediaReel {
		post.PostType = models.PostTypeReels
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// CreateReel creates a short video post shown in the reels feed
func (h *PostHandler) CreateReel(c echo.Context) error {
	var req models.CreateReelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:     middleware.UserID(c),
		AuthorName:   name,
		AuthorAvatar: avatar,
		Text:         req.Text,
		Media:        req.MediaURL,
		MediaType:    models.MediaReel,
		PublicID:     req.PublicID,
		PostType:     models.PostTypeReels,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(err, "Post")
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost edits the text of the caller's own post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.UpdatePostText(c.Request().Context(), c.Param("id"), middleware.UserID(c), req.Text)
	if err != nil {
		return repoError(err, "Post")
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes the caller's own post and its hosted media
func (h *PostHandler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.DeletePost(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return repoError(err, "Post")
	}

	if post.PublicID != "" && h.media != nil {
		if err := h.media.Destroy(ctx, post.PublicID); err != nil {
			h.log.Warn("failed to remove post media",
				zap.String("post_id", post.ID.Hex()),
				zap.String("public_id", post.PublicID),
				zap.Error(err),
			)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted", "id": post.ID.Hex()})
}

// ViewPost counts one view, used by the reels player
func (h *PostHandler) ViewPost(c echo.Context) error {
	post, err := h.postRepository.IncrementViews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": post.ID.Hex(), "views": post.Views})
}
