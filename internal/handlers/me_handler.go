package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/middleware"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// MeHandler serves the authenticated user's profile
type MeHandler struct {
	userRepository repositories.UserRepository
}

func NewMeHandler(userRepo repositories.UserRepository) *MeHandler {
	return &MeHandler{userRepository: userRepo}
}

// GetMe returns the user named by the access token subject
func (h *MeHandler) GetMe(c echo.Context) error {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to load user", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}

	return c.JSON(http.StatusOK, user.ToResponse())
}
