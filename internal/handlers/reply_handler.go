package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReplyHandler handles HTTP requests related to replies
type ReplyHandler struct {
	replyRepository repositories.ReplyRepository
	postRepository  repositories.PostRepository
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(replyRepo repositories.ReplyRepository, postRepo repositories.PostRepository) *ReplyHandler {
	return &ReplyHandler{
		replyRepository: replyRepo,
		postRepository:  postRepo,
	}
}

// RegisterReplyRoutes registers reply routes on the /api/posts group
func (h *ReplyHandler) RegisterReplyRoutes(g *echo.Group, bearer echo.MiddlewareFunc) {
	g.GET("/:id/replies", h.ListReplies)
	g.POST("/:id/replies", h.CreateReply, bearer)
}

// ListReplies returns a post's replies oldest first
func (h *ReplyHandler) ListReplies(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := requirePost(ctx, h.postRepository, postID); err != nil {
		return err
	}

	replies, err := h.replyRepository.GetRepliesByPostID(ctx, postID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list replies", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

// CreateReply adds a reply to a post
func (h *ReplyHandler) CreateReply(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := requirePost(ctx, h.postRepository, postID); err != nil {
		return err
	}

	reply := &models.Reply{PostID: postID, User: req.User, Content: req.Content}
	if err := h.replyRepository.CreateReply(ctx, reply); err != nil {
		slog.ErrorContext(ctx, "failed to create reply", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, reply)
}
