package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ShareHandler records shares of a post
type ShareHandler struct {
	shareRepository repositories.ShareRepository
	postRepository  repositories.PostRepository
}

func NewShareHandler(shareRepo repositories.ShareRepository, postRepo repositories.PostRepository) *ShareHandler {
	return &ShareHandler{
		shareRepository: shareRepo,
		postRepository:  postRepo,
	}
}

func (h *ShareHandler) RegisterShareRoutes(g *echo.Group, bearer echo.MiddlewareFunc) {
	g.POST("/:id/shares", h.CreateShare, bearer)
}

// CreateShare records that a user shared the post
func (h *ShareHandler) CreateShare(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateShareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := requirePost(ctx, h.postRepository, postID); err != nil {
		return err
	}

	share := &models.Share{PostID: postID, User: req.User}
	if req.Platform != "" {
		share.Platform = &req.Platform
	}
	if err := h.shareRepository.CreateShare(ctx, share); err != nil {
		slog.ErrorContext(ctx, "failed to create share", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, share)
}
