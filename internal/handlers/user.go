package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler serves author profiles.
type UserHandler struct {
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	pageSize         int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, followRepo repositories.FollowRepository, pageSize int) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
		pageSize:         pageSize,
	}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/:username/", h.Profile)
}

// Profile lists an author's posts with their post count and, for signed
// in visitors, whether they follow the author.
func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(c, err, "failed to load user")
	}
	page, err := h.postRepository.ListPosts(ctx, repositories.PostFilter{AuthorID: &author.ID}, pageRequest(c, h.pageSize))
	if err != nil {
		return storeError(c, err, "failed to list posts")
	}
	followers, err := h.followRepository.GetFollowersCount(ctx, author.ID)
	if err != nil {
		return storeError(c, err, "failed to count followers")
	}

	following := false
	if user := middleware.CurrentUser(c); user != nil && user.ID != author.ID {
		if following, err = h.followRepository.IsFollowing(ctx, user.ID, author.ID); err != nil {
			return storeError(c, err, "failed to check follow")
		}
	}

	return render(c, http.StatusOK, tplProfile, listing(echo.Map{
		"author":    author.ToCompact(),
		"count":     page.Total,
		"followers": followers,
		"following": following,
	}, page))
}
