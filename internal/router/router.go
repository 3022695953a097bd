package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/handlers"
	"github.com/aidenai/intranet/backend/internal/middleware"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/aidenai/intranet/backend/internal/tokens"
	"github.com/aidenai/intranet/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from
type Deps struct {
	AppName  string
	DB       *gorm.DB
	Identity handlers.IdentityValidator
	Issuer   *tokens.Issuer
}

// SetupRoutes migrates the schema, then configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) error {
	if err := repositories.AutoMigrate(deps.DB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	slog.Info("auto-migrations completed")

	e.Validator = validators.NewValidator()

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(deps.DB))
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": deps.AppName + " API"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	engagementRepo := repositories.NewPostgresEngagementRepository(deps.DB)
	reactionRepo := repositories.NewPostgresReactionRepository(deps.DB)
	replyRepo := repositories.NewPostgresReplyRepository(deps.DB)
	shareRepo := repositories.NewPostgresShareRepository(deps.DB)
	viewRepo := repositories.NewPostgresViewRepository(deps.DB)
	documentRepo := repositories.NewPostgresDocumentRepository(deps.DB)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(deps.Identity, deps.Issuer, userRepo)
	authHandler.RegisterAuthRoutes(authGroup)

	// Session-token protected profile
	meHandler := handlers.NewMeHandler(userRepo)
	e.GET("/api/me", meHandler.GetMe, middleware.JWTAuthMiddleware(deps.Issuer))

	// Posts; the bearer token is recorded on writes but not enforced
	posts := e.Group("/api/posts")
	bearer := middleware.OptionalBearer()

	handlers.NewPostHandler(postRepo, engagementRepo).RegisterPostRoutes(posts, bearer)
	handlers.NewReplyHandler(replyRepo, postRepo).RegisterReplyRoutes(posts, bearer)
	handlers.NewShareHandler(shareRepo, postRepo).RegisterShareRoutes(posts, bearer)
	handlers.NewReactionHandler(reactionRepo, postRepo).RegisterReactionRoutes(posts)
	handlers.NewViewHandler(viewRepo, postRepo).RegisterViewRoutes(posts, bearer)

	// Shared document links
	handlers.NewDocumentHandler(documentRepo).RegisterDocumentRoutes(e.Group("/api/documents"))

	slog.Info("all routes configured")
	return nil
}
