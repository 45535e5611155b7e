package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment submissions
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	detail            *detailView
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		detail:            &detailView{postRepository: postRepo, commentRepository: commentRepo},
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:post_id/comment/", h.AddComment, middleware.LoginRequired)
}

// AddComment attaches a comment by the current user to a post. A GET
// shows the post detail.
func (h *CommentHandler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return storeError(c, err, "failed to load post")
	}

	if c.Request().Method == http.MethodGet {
		return h.detail.render(c, http.StatusOK, post, formView(map[string]string{"text": ""}, nil))
	}

	form := forms.ParseCommentForm(c)
	if errs := form.Validate(); errs.Any() {
		return h.detail.render(c, http.StatusBadRequest, post, formView(form.Values(), errs))
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: middleware.CurrentUser(c).ID,
		Text:     form.Text,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return storeError(c, err, "failed to create comment")
	}
	return c.Redirect(http.StatusFound, postURL(post.ID))
}
