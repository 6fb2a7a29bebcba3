package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/onyxdrift/backend/internal/media"
)

// MediaStore hosts uploaded files
type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType string) (*media.Result, error)
	Destroy(ctx context.Context, publicID string) error
}

// UploadHandler accepts media uploads for posts, reels, stories and chat
type UploadHandler struct {
	store MediaStore
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store MediaStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// RegisterUploadRoutes registers upload routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload, echomw.BodyLimit("50M"))
	g.DELETE("/upload/:publicId", h.Delete)
}

// Upload stores the multipart "file" field and returns its hosted URL
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if err := media.CheckFormat(fh.Filename); err != nil {
		return mediaError(err)
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := h.store.Upload(c.Request().Context(), src, fh.Filename, fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return mediaError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Delete removes a hosted file by public id
func (h *UploadHandler) Delete(c echo.Context) error {
	if err := h.store.Destroy(c.Request().Context(), c.Param("publicId")); err != nil {
		return mediaError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted"})
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file format")
	case errors.Is(err, media.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	case errors.Is(err, media.ErrNotConfigured), errors.Is(err, media.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media storage is unavailable")
	}
	return err
}
