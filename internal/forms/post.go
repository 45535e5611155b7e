package forms

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 10 << 20

// imageExtensions lists the file extensions accepted for each decoded format.
var imageExtensions = map[string][]string{
	"gif":  {"gif"},
	"jpeg": {"jpeg", "jpg"},
	"png":  {"png"},
	"webp": {"webp"},
}

func extensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
}

func allowedExtension(ext string) bool {
	for _, exts := range imageExtensions {
		if slices.Contains(exts, ext) {
			return true
		}
	}
	return false
}

// GroupLookup resolves a group id; it is satisfied by the group repository.
type GroupLookup interface {
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
}

// PostForm is the submitted create/edit form.
type PostForm struct {
	Text       string                `form:"text" validate:"required"`
	Group      string                `form:"group" validate:"omitempty,numeric"`
	ImageClear bool                  `form:"-" validate:"-"`
	Image      *multipart.FileHeader `form:"-" validate:"-"`
}

// PostData is a validated PostForm.
type PostData struct {
	Text       string
	GroupID    *uint
	Image      *multipart.FileHeader
	ImageClear bool
}

// ParsePostForm reads text, group, image and image-clear from a
// urlencoded or multipart body.
func ParsePostForm(c echo.Context) (*PostForm, error) {
	f := &PostForm{
		Text:       strings.TrimSpace(c.FormValue("text")),
		Group:      strings.TrimSpace(c.FormValue("group")),
		ImageClear: c.FormValue("image-clear") != "",
	}
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		f.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, err
	}
	return f, nil
}

// Validate checks the form. Text is required, group must name an existing
// group and image must be a gif, jpeg, png or webp of at most MaxImageSize
// whose file extension matches its content.
func (f *PostForm) Validate(ctx context.Context, groups GroupLookup) (*PostData, Errors) {
	errs := ValidateStruct(f)
	data := &PostData{Text: f.Text, Image: f.Image, ImageClear: f.ImageClear}

	if f.Group != "" && len(errs["group"]) == 0 {
		id, err := strconv.ParseUint(f.Group, 10, 64)
		if err != nil || id == 0 {
			errs.Add("group", msgInvalidChoice)
		} else if _, err := groups.GetGroupByID(ctx, uint(id)); err != nil {
			errs.Add("group", msgInvalidChoice)
		} else {
			gid := uint(id)
			data.GroupID = &gid
		}
	}

	if f.Image != nil {
		if msg := checkImage(f.Image); msg != "" {
			errs.Add("image", msg)
		}
	}

	if errs.Any() {
		return nil, errs
	}
	return data, nil
}

// Values returns the submitted values for redisplaying the form.
func (f *PostForm) Values() map[string]string {
	return map[string]string{"text": f.Text, "group": f.Group}
}

func checkImage(fh *multipart.FileHeader) string {
	ext := extensionOf(fh.Filename)
	if !allowedExtension(ext) {
		return fmt.Sprintf(msgImageExtension, ext)
	}
	if fh.Size > MaxImageSize {
		return msgImageTooLarge
	}
	file, err := fh.Open()
	if err != nil {
		return msgImageRead
	}
	defer file.Close()
	_, format, err := image.DecodeConfig(file)
	if err != nil || !slices.Contains(imageExtensions[format], ext) {
		return msgInvalidImage
	}
	return ""
}
