package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRedirectURL(t *testing.T) {
	tests := map[string]string{
		"/create/":                 "/auth/login/?next=/create/",
		"/posts/3/comment/":        "/auth/login/?next=/posts/3/comment/",
		"/follow/?page=2":          "/auth/login/?next=/follow/%3Fpage%3D2",
		"/profile/leo/follow/":     "/auth/login/?next=/profile/leo/follow/",
		"/posts/1/edit/?x=a&y=b c": "/auth/login/?next=/posts/1/edit/%3Fx%3Da%26y%3Db+c",
	}
	for in, want := range tests {
		assert.Equal(t, want, LoginRedirectURL(in), in)
	}
}

func TestIssueAndParseToken(t *testing.T) {
	auth := NewJWTAuth("secret", nil)
	user := &models.User{ID: 7, Username: "leo"}

	token, expires, err := auth.IssueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expires, time.Minute)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = NewJWTAuth("other", nil).ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	claims := &models.JwtCustomClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTAuth("secret", nil).ParseToken(token)
	assert.Error(t, err)
}

func TestLoginRequired(t *testing.T) {
	e := echo.New()
	handler := LoginRequired(func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).Username)
	})

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/create/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetCurrentUser(c, &models.User{ID: 1, Username: "leo"})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leo", rec.Body.String())
}
