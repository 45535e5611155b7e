package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterAboutRoutes registers the static about pages.
func RegisterAboutRoutes(g *echo.Group) {
	g.GET("/author/", func(c echo.Context) error {
		return render(c, http.StatusOK, tplAuthor, nil)
	})
	g.GET("/tech/", func(c echo.Context) error {
		return render(c, http.StatusOK, tplTech, nil)
	})
}
