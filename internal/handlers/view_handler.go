package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ViewHandler records post views
type ViewHandler struct {
	viewRepository repositories.ViewRepository
	postRepository repositories.PostRepository
}

func NewViewHandler(viewRepo repositories.ViewRepository, postRepo repositories.PostRepository) *ViewHandler {
	return &ViewHandler{
		viewRepository: viewRepo,
		postRepository: postRepo,
	}
}

func (h *ViewHandler) RegisterViewRoutes(g *echo.Group, bearer echo.MiddlewareFunc) {
	g.POST("/:id/views", h.CreateView, bearer)
}

// CreateView appends a view row; repeat views by the same user are all kept
func (h *ViewHandler) CreateView(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateViewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := requirePost(ctx, h.postRepository, postID); err != nil {
		return err
	}

	if err := h.viewRepository.CreateView(ctx, &models.PostView{PostID: postID, User: req.User}); err != nil {
		slog.ErrorContext(ctx, "failed to record view", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "ok"})
}
