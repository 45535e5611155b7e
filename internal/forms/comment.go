package forms

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// CommentForm exposes only the comment text.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

func ParseCommentForm(c echo.Context) *CommentForm {
	return &CommentForm{Text: strings.TrimSpace(c.FormValue("text"))}
}

func (f *CommentForm) Validate() Errors {
	return ValidateStruct(f)
}

func (f *CommentForm) Values() map[string]string {
	return map[string]string{"text": f.Text}
}
