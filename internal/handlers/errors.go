package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders the not-found page for 404s and a JSON error
// body for everything else.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := any(http.StatusText(code))
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = he.Message
		if he.Internal != nil {
			err = he.Internal
		}
	}
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error("request failed", "path", c.Request().URL.Path, "error", err)
	}

	var renderErr error
	switch {
	case c.Request().Method == http.MethodHead:
		renderErr = c.NoContent(code)
	case code == http.StatusNotFound:
		renderErr = render(c, http.StatusNotFound, tplNotFound, echo.Map{"path": c.Request().URL.Path})
	default:
		renderErr = c.JSON(code, echo.Map{"message": message})
	}
	if renderErr != nil {
		logger.FromContext(c.Request().Context()).Error("render error response", "error", renderErr)
	}
}
