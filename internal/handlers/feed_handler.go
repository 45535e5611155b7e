package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the paginated post listings: home, group and the
// feed of followed authors.
type FeedHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	pageSize        int
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, pageSize int) *FeedHandler {
	return &FeedHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		pageSize:        pageSize,
	}
}

// RegisterFeedRoutes registers the listings. indexMiddleware wraps only
// the home page.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, indexMiddleware ...echo.MiddlewareFunc) {
	g.GET("/", h.Index, indexMiddleware...)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/follow/", h.FollowIndex, middleware.LoginRequired)
}

// Index lists every post, newest first.
func (h *FeedHandler) Index(c echo.Context) error {
	page, err := h.postRepository.ListPosts(c.Request().Context(), repositories.PostFilter{}, pageRequest(c, h.pageSize))
	if err != nil {
		return storeError(c, err, "failed to list posts")
	}
	return render(c, http.StatusOK, tplIndex, listing(echo.Map{}, page))
}

// GroupPosts lists the posts of one group.
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groupRepository.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return storeError(c, err, "failed to load group")
	}
	page, err := h.postRepository.ListPosts(ctx, repositories.PostFilter{GroupID: &group.ID}, pageRequest(c, h.pageSize))
	if err != nil {
		return storeError(c, err, "failed to list posts")
	}
	return render(c, http.StatusOK, tplGroupList, listing(echo.Map{"group": group}, page))
}

// FollowIndex lists posts by the authors the current user follows.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	user := middleware.CurrentUser(c)
	page, err := h.postRepository.ListPosts(c.Request().Context(), repositories.PostFilter{FollowerID: &user.ID}, pageRequest(c, h.pageSize))
	if err != nil {
		return storeError(c, err, "failed to list posts")
	}
	return render(c, http.StatusOK, tplFollow, listing(echo.Map{}, page))
}
