package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Please enter a correct username and password."

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	jwtAuth        *middleware.JWTAuth
	firebase       firebase.TokenVerifier // nil when Firebase is not configured
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, jwtAuth *middleware.JWTAuth, verifier firebase.TokenVerifier, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		jwtAuth:        jwtAuth,
		firebase:       verifier,
		secureCookies:  secureCookies,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.Match([]string{http.MethodGet, http.MethodPost}, "/signup/", h.Signup)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/login/", h.Login)
	g.GET("/logout/", h.Logout)
	g.POST("/firebase/", h.FirebaseLogin)
}

// Signup registers a local account and signs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, tplSignup, echo.Map{"form": formView(map[string]string{}, nil)})
	}

	req := models.SignupRequest{
		Username: strings.TrimSpace(c.FormValue("username")),
		Name:     strings.TrimSpace(c.FormValue("name")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
	}
	values := map[string]string{"username": req.Username, "name": req.Name, "email": req.Email}
	errs := forms.ValidateStruct(req)
	if errs.Any() {
		return render(c, http.StatusBadRequest, tplSignup, echo.Map{"form": formView(values, errs)})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user := &models.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	err = h.userRepository.CreateUser(c.Request().Context(), user)
	if errors.Is(err, models.ErrDuplicate) {
		errs.Add("username", "A user with that username already exists.")
		return render(c, http.StatusBadRequest, tplSignup, echo.Map{"form": formView(values, errs)})
	}
	if err != nil {
		return storeError(c, err, "failed to create user")
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// Login checks a username and password and redirects to next.
func (h *AuthHandler) Login(c echo.Context) error {
	next := safeNext(c.QueryParam("next"))
	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, tplLogin, echo.Map{
			"form": formView(map[string]string{"username": ""}, nil),
			"next": next,
		})
	}

	req := models.LoginRequest{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Next:     c.FormValue("next"),
	}
	if req.Next != "" {
		next = safeNext(req.Next)
	}
	values := map[string]string{"username": req.Username}
	errs := forms.ValidateStruct(req)
	if !errs.Any() {
		user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
		switch {
		case err == nil && user.Password != "" &&
			bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil:
			if err := h.startSession(c, user); err != nil {
				return err
			}
			return c.Redirect(http.StatusFound, next)
		case err != nil && !errors.Is(err, models.ErrNotFound):
			return storeError(c, err, "failed to load user")
		}
		errs.Add("__all__", msgBadCredentials)
	}
	return render(c, http.StatusBadRequest, tplLogin, echo.Map{"form": formView(values, errs), "next": next})
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return render(c, http.StatusOK, tplLoggedOut, nil)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" form:"idToken" validate:"required"`
}

// FirebaseLogin exchanges a Firebase ID token for a session, linking or
// creating the local account.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if errs := forms.ValidateStruct(req); errs.Any() {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx := c.Request().Context()
	identity, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.firebaseUser(c, identity)
	if err != nil {
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("firebase login", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": user.ToCompact()})
}

// firebaseUser finds the account for identity by UID, then by email, and
// creates one when neither matches.
func (h *AuthHandler) firebaseUser(c echo.Context, identity *firebase.Identity) (*models.User, error) {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, storeError(c, err, "failed to load user")
	}

	uid := identity.UID
	if identity.Email != "" {
		user, err = h.userRepository.GetUserByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, storeError(c, err, "failed to link firebase account")
			}
			return user, nil
		case !errors.Is(err, models.ErrNotFound):
			return nil, storeError(c, err, "failed to load user")
		}
	}

	user = &models.User{
		Username:    usernameFor(identity),
		Name:        identity.Name,
		Email:       identity.Email,
		FirebaseUID: &uid,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, models.ErrDuplicate) {
			return nil, storeError(c, err, "failed to create user")
		}
		user.Username = fmt.Sprintf("%s_%s", user.Username, uuid.NewString()[:6])
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return nil, storeError(c, err, "failed to create user")
		}
	}
	return user, nil
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	token, expires, err := h.jwtAuth.IssueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func usernameFor(identity *firebase.Identity) string {
	if local, _, ok := strings.Cut(identity.Email, "@"); ok && local != "" {
		return local
	}
	return "user_" + identity.UID
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
