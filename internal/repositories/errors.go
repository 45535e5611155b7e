package repositories

import (
	"errors"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// translateError maps gorm errors onto the model sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case isUniqueViolation(err):
		return models.ErrDuplicate
	}
	return err
}

// isUniqueViolation reports whether err is a unique-constraint failure. Dialectors
// that do not implement error translation are matched by message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
