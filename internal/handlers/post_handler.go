package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/storage"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post detail, creation and editing.
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	images          storage.ImageStore
	detail          *detailView
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	commentRepo repositories.CommentRepository,
	images storage.ImageStore,
) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		images:          images,
		detail:          &detailView{postRepository: postRepo, commentRepository: commentRepo},
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/", h.PostDetail)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.PostCreate, middleware.LoginRequired)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:post_id/edit/", h.PostEdit, middleware.LoginRequired)
}

// PostDetail shows a post with its comments and an empty comment form.
func (h *PostHandler) PostDetail(c echo.Context) error {
	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "failed to load post")
	}
	return h.detail.render(c, http.StatusOK, post, formView(map[string]string{"text": ""}, nil))
}

// PostCreate shows the post form and publishes valid submissions as the
// current user.
func (h *PostHandler) PostCreate(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if c.Request().Method == http.MethodGet {
		return h.renderForm(c, http.StatusOK, map[string]string{"text": "", "group": ""}, nil, nil)
	}

	form, err := forms.ParsePostForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	data, errs := form.Validate(ctx, h.groupRepository)
	if errs.Any() {
		return h.renderForm(c, http.StatusBadRequest, form.Values(), errs, nil)
	}

	post := &models.Post{Text: data.Text, AuthorID: user.ID, GroupID: data.GroupID}
	if data.Image != nil {
		if post.Image, err = h.saveImage(c, data); err != nil {
			return err
		}
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		h.discardImage(c, post.Image)
		return storeError(c, err, "failed to create post")
	}
	return c.Redirect(http.StatusFound, profileURL(user.Username))
}

// PostEdit lets the author change text, group and image. Anyone else is
// sent back to the post.
func (h *PostHandler) PostEdit(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return storeError(c, err, "failed to load post")
	}
	if post.AuthorID != user.ID {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}

	if c.Request().Method == http.MethodGet {
		initial := map[string]string{"text": post.Text, "group": ""}
		if post.GroupID != nil {
			initial["group"] = fmt.Sprint(*post.GroupID)
		}
		return h.renderForm(c, http.StatusOK, initial, nil, post)
	}

	form, err := forms.ParsePostForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	data, errs := form.Validate(ctx, h.groupRepository)
	if errs.Any() {
		return h.renderForm(c, http.StatusBadRequest, form.Values(), errs, post)
	}

	post.Text = data.Text
	post.GroupID = data.GroupID
	saved := ""
	switch {
	case data.Image != nil:
		if saved, err = h.saveImage(c, data); err != nil {
			return err
		}
		post.Image = saved
	case data.ImageClear:
		post.Image = ""
	}
	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		h.discardImage(c, saved)
		return storeError(c, err, "failed to update post")
	}
	return c.Redirect(http.StatusFound, postURL(post.ID))
}

func (h *PostHandler) renderForm(c echo.Context, status int, values map[string]string, errs forms.Errors, post *models.Post) error {
	groups, err := h.groupRepository.ListGroups(c.Request().Context())
	if err != nil {
		return storeError(c, err, "failed to load groups")
	}
	data := echo.Map{
		"form":    formView(values, errs),
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["post_id"] = post.ID
		data["image"] = post.Image
	}
	return render(c, status, tplCreatePost, data)
}

func (h *PostHandler) saveImage(c echo.Context, data *forms.PostData) (string, error) {
	file, err := data.Image.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded image")
	}
	defer file.Close()
	ref, err := h.images.Save(c.Request().Context(), data.Image.Filename, file)
	if err != nil {
		return "", storeError(c, err, "failed to store image")
	}
	return ref, nil
}

// discardImage removes an image saved for a post that was not persisted.
func (h *PostHandler) discardImage(c echo.Context, ref string) {
	if ref == "" {
		return
	}
	if err := h.images.Delete(c.Request().Context(), ref); err != nil {
		logger.FromContext(c.Request().Context()).Warn("failed to remove orphaned image", "ref", ref, "error", err)
	}
}

// detailView renders the post detail page for the post and comment handlers.
type detailView struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
}

func (d *detailView) render(c echo.Context, status int, post *models.Post, form echo.Map) error {
	ctx := c.Request().Context()
	count, err := d.postRepository.CountPosts(ctx, repositories.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return storeError(c, err, "failed to count posts")
	}
	comments, err := d.commentRepository.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return storeError(c, err, "failed to load comments")
	}
	return render(c, status, tplPostDetail, echo.Map{
		"post":     post.ToView(),
		"title":    postTitle(post.Text),
		"count":    count,
		"comments": models.CommentViews(comments),
		"form":     form,
	})
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
