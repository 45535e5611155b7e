package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the session cookie carrying the signed token.
	CookieName = "token"
	// LoginURL is where anonymous users are sent for protected pages.
	LoginURL = "/auth/login/"
	// TokenTTL is how long an issued token stays valid.
	TokenTTL = 72 * time.Hour

	userKey = "user"
)

// JWTAuth verifies session tokens issued by the auth handler.
type JWTAuth struct {
	secret []byte
	users  repositories.UserRepository
}

func NewJWTAuth(secret string, users repositories.UserRepository) *JWTAuth {
	return &JWTAuth{secret: []byte(secret), users: users}
}

// IssueToken signs a token for user.
func (a *JWTAuth) IssueToken(user *models.User) (string, time.Time, error) {
	expires := time.Now().Add(TokenTTL)
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken validates a signed token and returns its claims.
func (a *JWTAuth) ParseToken(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate resolves the current user from the session cookie or a
// Bearer header. Requests without a valid token continue anonymously.
func (a *JWTAuth) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return next(c)
			}
			claims, err := a.ParseToken(tokenString)
			if err != nil {
				return next(c)
			}
			ctx := c.Request().Context()
			user, err := a.users.GetUserByID(ctx, claims.UserID)
			switch {
			case err == nil:
				SetCurrentUser(c, user)
			case !errors.Is(err, models.ErrNotFound):
				logger.FromContext(ctx).Error("load session user", "user_id", claims.UserID, "error", err)
			}
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(c)
}

// bearerToken extracts "<token>" from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) string {
	parts := strings.Fields(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SetCurrentUser attaches user to the request.
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}

// LoginRequired redirects anonymous users to the login page, passing the
// original request URI in "next".
func LoginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return c.Redirect(http.StatusFound, LoginRedirectURL(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// LoginRedirectURL builds the login URL returning to requestURI.
func LoginRedirectURL(requestURI string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(requestURI), "%2F", "/")
}
