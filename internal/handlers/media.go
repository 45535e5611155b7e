package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// mediaTypes are the content types served from /media.
var mediaTypes = map[string]bool{
	"image/gif":  true,
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MediaHandler streams uploaded images.
type MediaHandler struct {
	images storage.ImageStore
}

func NewMediaHandler(images storage.ImageStore) *MediaHandler {
	return &MediaHandler{images: images}
}

// RegisterMediaRoutes registers the media route
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/*", h.Serve)
}

// Serve streams the image at the wildcard reference. Only gif, jpeg, png
// and webp references are served.
func (h *MediaHandler) Serve(c echo.Context) error {
	ref := c.Param("*")
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(ref)))
	if !mediaTypes[contentType] {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	rc, err := h.images.Open(c.Request().Context(), ref)
	if errors.Is(err, storage.ErrNotExist) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return storeError(c, err, "failed to open image")
	}
	defer rc.Close()

	header := c.Response().Header()
	header.Set("Cache-Control", "public, max-age=86400")
	header.Set("X-Content-Type-Options", "nosniff")
	return c.Stream(http.StatusOK, contentType, rc)
}
