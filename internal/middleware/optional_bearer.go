package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// BearerTokenKey holds the raw bearer token when one was presented.
const BearerTokenKey = "bearerToken"

const loggedTokenPrefix = 16

// OptionalBearer records a presented bearer token without verifying it.
// Requests without one pass through unchanged.
func OptionalBearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				slog.DebugContext(c.Request().Context(), "no bearer token presented", "route", c.Path())
				return next(c)
			}

			prefix := token
			if len(prefix) > loggedTokenPrefix {
				prefix = prefix[:loggedTokenPrefix] + "..."
			}
			slog.DebugContext(c.Request().Context(), "bearer token presented", "route", c.Path(), "token_prefix", prefix)
			c.Set(BearerTokenKey, token)
			return next(c)
		}
	}
}
