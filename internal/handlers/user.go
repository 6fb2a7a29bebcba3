package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, postRepository: postRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/user/me", h.GetMe)
	g.GET("/user/profile/:userId", h.GetProfile)
	g.PUT("/user/update-profile", h.UpdateProfile)
	g.PUT("/user/settings", h.UpdateSettings)
	g.GET("/user/search", h.SearchUsers)
}

// GetMe retrieves the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.userRepository.GetByAuthID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return repoError(err, "User")
	}
	return c.JSON(http.StatusOK, user)
}

type profileResponse struct {
	User        *models.User  `json:"user"`
	Posts       []models.Post `json:"posts"`
	IsFollowing bool          `json:"is_following"`
}

// GetProfile returns a user with their latest posts
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetByAuthID(ctx, c.Param("userId"))
	if err != nil {
		return repoError(err, "User")
	}

	_, limit, skip := pagination(c)
	posts, err := h.postRepository.ListPosts(ctx, repositories.PostFilter{AuthorID: user.AuthID}, skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{
		User:        user,
		Posts:       posts,
		IsFollowing: user.IsFollowedBy(middleware.UserID(c)),
	})
}

// UpdateProfile edits the caller's profile fields
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.userRepository.UpdateProfile(c.Request().Context(), middleware.UserID(c), &req)
	if err != nil {
		return repoError(err, "Nickname")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateSettings switches ghost mode, which hides the caller from search, and
// the anti-screenshot flag clients honour when showing the caller's content
func (h *UserHandler) UpdateSettings(c echo.Context) error {
	var req models.UpdateSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.GhostMode == nil && req.AntiScreenshot == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ghost_mode or anti_screenshot is required")
	}
	user, err := h.userRepository.UpdateSettings(c.Request().Context(), middleware.UserID(c), &req)
	if err != nil {
		return repoError(err, "User")
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers matches the start of names and nicknames
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		query = strings.TrimSpace(c.QueryParam("query"))
	}
	if query == "" {
		return c.JSON(http.StatusOK, []models.UserCompact{})
	}

	_, limit, skip := pagination(c)
	users, err := h.userRepository.Search(c.Request().Context(), query, middleware.UserID(c), skip, int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, compact(users))
}

func compact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out
}
