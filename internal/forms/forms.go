// Package forms binds and validates the post and comment forms.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired       = "This field is required."
	msgInvalidChoice  = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage   = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooLarge  = "The uploaded image is larger than 10 MiB."
	msgImageExtension = "File extension \"%s\" is not allowed. Allowed extensions are: gif, jpeg, jpg, png, webp."
	msgImageRead      = "The submitted file could not be read."
)

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends a message to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether at least one field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the struct validator and converts its field errors,
// keyed by form field name.
func ValidateStruct(s any) Errors {
	errs := Errors{}
	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "numeric", "oneof":
		return msgInvalidChoice
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	}
	return "Enter a valid value."
}
