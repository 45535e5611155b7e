package router

import (
	"log/slog"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/handlers"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/storage"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are wired with.
type Deps struct {
	DB        *gorm.DB
	Cache     cache.Store
	Images    storage.ImageStore
	Firebase  firebase.TokenVerifier // optional
	Metrics   *middleware.Metrics    // optional
	JWTSecret string
	PageSize  int
	Secure    bool
	Logger    *slog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.DB)
	groupRepo := repositories.NewPostgresGroupRepository(d.DB)
	postRepo := repositories.NewPostgresPostRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	followRepo := repositories.NewPostgresFollowRepository(d.DB)

	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
		e.GET("/metrics", d.Metrics.Handler())
		log.Debug("metrics routes configured")
	}
	e.GET("/health", handlers.NewHealthHandler(d.DB).HealthCheck)

	jwtAuth := middleware.NewJWTAuth(d.JWTSecret, userRepo)
	site := e.Group("", jwtAuth.Authenticate(), middleware.FirebaseAuthMiddleware(d.Firebase, userRepo))

	authHandler := handlers.NewAuthHandler(userRepo, jwtAuth, d.Firebase, d.Secure)
	authHandler.RegisterAuthRoutes(site.Group("/auth"))
	log.Debug("auth routes configured")

	handlers.RegisterAboutRoutes(site.Group("/about"))
	handlers.NewMediaHandler(d.Images).RegisterMediaRoutes(site.Group("/media"))

	feedHandler := handlers.NewFeedHandler(postRepo, groupRepo, d.PageSize)
	feedHandler.RegisterFeedRoutes(site, cache.CachePage(d.Cache))

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, commentRepo, d.Images)
	postHandler.RegisterPostRoutes(site)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(site)

	userHandler := handlers.NewUserHandler(userRepo, postRepo, followRepo, d.PageSize)
	userHandler.RegisterProfileRoutes(site)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(site)

	log.Info("all routes configured")
}
