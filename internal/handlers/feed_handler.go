package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// FeedHandler serves the paginated post listings
type FeedHandler struct {
	postRepository repositories.PostRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository) *FeedHandler {
	return &FeedHandler{postRepository: postRepo}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
	g.GET("/posts/reels", h.GetReels)
	g.GET("/posts/user/:userId", h.GetUserPosts)
}

// GetFeed returns every post, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	return h.list(c, repositories.PostFilter{})
}

// GetReels returns reels only, newest first
func (h *FeedHandler) GetReels(c echo.Context) error {
	return h.list(c, repositories.PostFilter{PostType: models.PostTypeReels})
}

// GetUserPosts returns one author's posts, newest first
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
	return h.list(c, repositories.PostFilter{AuthorID: c.Param("userId")})
}

func (h *FeedHandler) list(c echo.Context, filter repositories.PostFilter) error {
	_, limit, skip := pagination(c)
	posts, err := h.postRepository.ListPosts(c.Request().Context(), filter, skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
