package middleware

import (
	"net/http"
	"strings"

	"github.com/aidenai/intranet/backend/internal/tokens"
	"github.com/labstack/echo/v4"
)

// UserIDKey is the context key holding the authenticated user's id.
const UserIDKey = "userID"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// JWTAuthMiddleware requires a session token signed by issuer and stores its
// subject under UserIDKey.
func JWTAuthMiddleware(issuer *tokens.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			tokenString, ok := bearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := issuer.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(UserIDKey, claims.Subject)
			return next(c)
		}
	}
}
