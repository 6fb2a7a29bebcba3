package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	userRepository  repositories.UserRepository
	now             func() time.Time
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository, userRepo repositories.UserRepository) *StoryHandler {
	return &StoryHandler{
		storyRepository: storyRepo,
		userRepository:  userRepo,
		now:             time.Now,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// GetStories returns every story whose window has not elapsed, newest first
func (h *StoryHandler) GetStories(c echo.Context) error {
	now := h.now()
	stories, err := h.storyRepository.GetActiveStories(c.Request().Context(), now)
	if err != nil {
		return err
	}

	// the TTL sweeper runs lazily, so expired documents can still come back
	active := make([]models.Story, 0, len(stories))
	for _, s := range stories {
		if s.ActiveAt(now) {
			active = append(active, s)
		}
	}
	return c.JSON(http.StatusOK, active)
}

// CreateStory publishes a story for the configured window
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	name, avatar, err := author(c, h.userRepository)
	if err != nil {
		return err
	}
	story := &models.Story{
		UserID:        middleware.UserID(c),
		UserName:      name,
		UserAvatar:    avatar,
		MediaURL:      req.MediaURL,
		Text:          req.Text,
		Music:         req.Music,
		Filter:        req.Filter,
		OnlyMessenger: req.OnlyMessenger,
	}
	if story.Filter == "" {
		story.Filter = "none"
	}

	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, story)
}

// DeleteStory removes one of the caller's stories
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	if err := h.storyRepository.DeleteStory(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return repoError(err, "Story")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Story deleted"})
}
