package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/aidenai/intranet/backend/internal/tokens"
	"github.com/aidenai/intranet/backend/pkg/identity"
	"github.com/labstack/echo/v4"
)

const defaultTenantSlug = "aidenai"

// IdentityValidator verifies an identity-provider token.
type IdentityValidator interface {
	Validate(ctx context.Context, rawToken string) (*identity.Claims, error)
}

// AuthHandler exchanges Microsoft ID tokens for session tokens
type AuthHandler struct {
	validator      IdentityValidator
	issuer         *tokens.Issuer
	userRepository repositories.UserRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(validator IdentityValidator, issuer *tokens.Issuer, userRepo repositories.UserRepository) *AuthHandler {
	return &AuthHandler{
		validator:      validator,
		issuer:         issuer,
		userRepository: userRepo,
	}
}

// RegisterAuthRoutes registers authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/microsoft/exchange", h.MicrosoftExchange)
}

// MicrosoftExchange validates the ID token, finds or creates the user by
// email and returns a fresh token pair.
func (h *AuthHandler) MicrosoftExchange(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.MicrosoftExchangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tenant := req.TenantSlug
	if tenant == "" {
		tenant = defaultTenantSlug
	}

	claims, err := h.validator.Validate(ctx, req.IDToken)
	if err != nil {
		slog.WarnContext(ctx, "microsoft token rejected", "tenant", tenant, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Microsoft token")
	}
	if claims.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid Microsoft token")
	}

	user, err := h.userRepository.FindOrCreate(ctx, claims.Email, claims.Name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
	}

	pair, err := h.issuer.IssuePair(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue tokens", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue tokens")
	}

	slog.InfoContext(ctx, "microsoft exchange succeeded", "tenant", tenant, "user_id", user.ID)
	return c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}
