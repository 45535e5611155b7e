package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/anonto42/nano-blog/backend/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// Template names of the rendered views.
const (
	tplIndex       = "posts/index.html"
	tplGroupList   = "posts/group_list.html"
	tplProfile     = "posts/profile.html"
	tplPostDetail  = "posts/post_detail.html"
	tplCreatePost  = "posts/create_post.html"
	tplFollow      = "posts/follow.html"
	tplNotFound    = "core/404.html"
	tplAuthor      = "about/author.html"
	tplTech        = "about/tech.html"
	tplSignup      = "users/signup.html"
	tplLogin       = "users/login.html"
	tplLoggedOut   = "users/logged_out.html"
	titleMaxLength = 30
)

// render writes a view: the template name plus its context as JSON.
func render(c echo.Context, status int, template string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["template"] = template
	return c.JSON(status, data)
}

// formView is the context entry of a bound form.
func formView(values map[string]string, errs forms.Errors) echo.Map {
	if errs == nil {
		errs = forms.Errors{}
	}
	return echo.Map{"fields": values, "errors": errs}
}

// listing adds a page of posts and its pagination meta to data.
func listing(data echo.Map, page *pagination.Page[models.Post]) echo.Map {
	data["posts"] = models.PostViews(page.Items)
	data["meta"] = echo.Map{
		"currentPage":     page.Number,
		"totalPages":      page.NumPages,
		"totalItems":      page.Total,
		"itemsPerPage":    page.PerPage,
		"hasNextPage":     page.HasNext,
		"hasPreviousPage": page.HasPrevious,
	}
	return data
}

// pageRequest reads the "page" query parameter.
func pageRequest(c echo.Context, size int) pagination.Request {
	return pagination.NewRequest(c.QueryParam("page"), size)
}

// parseID reads a positive numeric path parameter. Anything else is a 404,
// the same as a lookup miss.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return uint(id), nil
}

// storeError maps a repository error to an HTTP error, logging the ones
// that are not the caller's fault.
func storeError(c echo.Context, err error, msg string) error {
	if errors.Is(err, models.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	logger.FromContext(c.Request().Context()).Error(msg, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

func postTitle(text string) string {
	r := []rune(text)
	if len(r) > titleMaxLength {
		return string(r[:titleMaxLength])
	}
	return text
}
