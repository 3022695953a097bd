package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	reactionRepository repositories.ReactionRepository
	postRepository     repositories.PostRepository
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionRepo repositories.ReactionRepository, postRepo repositories.PostRepository) *ReactionHandler {
	return &ReactionHandler{
		reactionRepository: reactionRepo,
		postRepository:     postRepo,
	}
}

// RegisterReactionRoutes registers reaction routes on the /api/posts group
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/:id/reactions", h.AddReaction)
	g.DELETE("/:id/reactions", h.RemoveReaction)
}

func (h *ReactionHandler) bindRequest(c echo.Context) (uint, models.ReactionRequest, error) {
	var req models.ReactionRequest
	postID, err := pathID(c, "id")
	if err != nil {
		return 0, req, err
	}
	values, err := formValues(c)
	if err != nil {
		return 0, req, echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	req.User = values.Get("user")
	req.Reaction = values.Get("reaction")
	if err := c.Validate(&req); err != nil {
		return 0, req, err
	}
	if err := requirePost(c.Request().Context(), h.postRepository, postID); err != nil {
		return 0, req, err
	}
	return postID, req, nil
}

// AddReaction stores a reaction, or returns the matching one already stored.
// Both answer 201.
func (h *ReactionHandler) AddReaction(c echo.Context) error {
	postID, req, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	reaction := &models.Reaction{PostID: postID, User: req.User, Reaction: req.Reaction}
	created, err := h.reactionRepository.CreateIfAbsent(c.Request().Context(), reaction)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to add reaction", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !created {
		slog.DebugContext(c.Request().Context(), "reaction already present", "post_id", postID, "reaction_id", reaction.ID)
	}
	return c.JSON(http.StatusCreated, reaction)
}

// RemoveReaction deletes every matching reaction by the user
func (h *ReactionHandler) RemoveReaction(c echo.Context) error {
	postID, req, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	deleted, err := h.reactionRepository.DeleteMatching(c.Request().Context(), postID, req.User, req.Reaction)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to remove reaction", "post_id", postID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if deleted == 0 {
		return c.JSON(http.StatusOK, map[string]string{"status": "not_found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "deleted", "deleted": deleted})
}
