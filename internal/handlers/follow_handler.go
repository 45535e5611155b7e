package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const followIndexURL = "/follow/"

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/profile/:username/follow/", h.ProfileFollow, middleware.LoginRequired)
	g.GET("/profile/:username/unfollow/", h.ProfileUnfollow, middleware.LoginRequired)
}

// ProfileFollow subscribes the current user to an author. Following
// yourself or someone already followed goes back to the profile.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(c, err, "failed to load user")
	}
	if author.ID == user.ID {
		return c.Redirect(http.StatusFound, profileURL(author.Username))
	}

	err = h.followRepository.CreateFollow(ctx, &models.Follow{UserID: user.ID, AuthorID: author.ID})
	if errors.Is(err, models.ErrAlreadyFollowing) {
		return c.Redirect(http.StatusFound, profileURL(author.Username))
	}
	if err != nil {
		return storeError(c, err, "failed to follow user")
	}
	return c.Redirect(http.StatusFound, followIndexURL)
}

// ProfileUnfollow removes the subscription if there is one.
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(c, err, "failed to load user")
	}
	if _, err := h.followRepository.DeleteFollow(ctx, user.ID, author.ID); err != nil {
		return storeError(c, err, "failed to unfollow user")
	}
	return c.Redirect(http.StatusFound, followIndexURL)
}
