package middleware

import (
	"errors"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// FirebaseAuthMiddleware accepts Firebase ID tokens as Bearer credentials
// for accounts already linked to a Firebase UID. It runs after
// Authenticate and leaves requests with a resolved user untouched.
func FirebaseAuthMiddleware(verifier firebase.TokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil || CurrentUser(c) != nil {
				return next(c)
			}
			idToken := bearerToken(c)
			if idToken == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			identity, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return next(c)
			}
			user, err := users.GetUserByFirebaseUID(ctx, identity.UID)
			switch {
			case err == nil:
				SetCurrentUser(c, user)
			case !errors.Is(err, models.ErrNotFound):
				logger.FromContext(ctx).Error("load firebase user", "uid", identity.UID, "error", err)
			}
			return next(c)
		}
	}
}
