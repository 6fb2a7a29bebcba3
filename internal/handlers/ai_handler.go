package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/ai"
)

// CaptionSource produces caption suggestions for a topic
type CaptionSource interface {
	Generate(ctx context.Context, topic string) (*ai.Captions, error)
}

type captionRequest struct {
	Prompt string `json:"prompt" validate:"required,max=500"`
}

// AIHandler exposes caption generation
type AIHandler struct {
	captions CaptionSource
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(captions CaptionSource) *AIHandler {
	return &AIHandler{captions: captions}
}

// RegisterAIRoutes registers AI routes
func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.POST("/ai/generate-caption", h.GenerateCaption)
}

// GenerateCaption returns caption suggestions for the given prompt
func (h *AIHandler) GenerateCaption(c echo.Context) error {
	var req captionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	captions, err := h.captions.Generate(c.Request().Context(), req.Prompt)
	switch {
	case errors.Is(err, ai.ErrNotConfigured), errors.Is(err, ai.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Caption generation is unavailable")
	case errors.Is(err, ai.ErrEmptyResponse):
		return echo.NewHTTPError(http.StatusBadGateway, "No captions were generated")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, captions)
}
