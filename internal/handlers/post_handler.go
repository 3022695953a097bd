package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aidenai/intranet/backend/internal/engagement"
	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	defaultListLimit   = 100
	defaultContentType = "application/octet-stream"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository       repositories.PostRepository
	engagementRepository repositories.EngagementRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, engagementRepo repositories.EngagementRepository) *PostHandler {
	return &PostHandler{
		postRepository:       postRepo,
		engagementRepository: engagementRepo,
	}
}

// RegisterPostRoutes registers post routes on the /api/posts group. Writes
// pass through bearer, which only records the caller's token.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, bearer echo.MiddlewareFunc) {
	for _, root := range []string{"", "/"} {
		g.POST(root, h.CreatePost, bearer)
		g.GET(root, h.ListPosts)
	}
	g.GET("/:id", h.GetPost)
	g.PUT("/:id", h.UpdatePost, bearer)
	g.DELETE("/:id", h.DeletePost)
	g.GET("/:id/attachments/:att_id", h.GetAttachment)
}

// CreatePost creates a post from a multipart form with optional files
func (h *PostHandler) CreatePost(c echo.Context) error {
	values, err := formValues(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	req := models.CreatePostRequest{
		Title:        values.Get("title"),
		Description:  optionalValue(values, "description"),
		Author:       values.Get("author"),
		AnnounceType: optionalValue(values, "announce_type"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	attachments, err := readAttachments(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		Title:        req.Title,
		Description:  req.Description,
		Author:       req.Author,
		AnnounceType: req.AnnounceType,
		Attachments:  attachments,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to create post", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	slog.InfoContext(c.Request().Context(), "post created", "post_id", post.ID, "attachments", len(attachments))

	return h.respondWithPost(c, http.StatusCreated, post.ID)
}

// ListPosts returns a page of posts, newest first
func (h *PostHandler) ListPosts(c echo.Context) error {
	ctx := c.Request().Context()
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil {
		return err
	}

	posts, total, err := h.postRepository.ListPosts(ctx, skip, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list posts", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	counts, err := h.engagementRepository.CountsForPosts(ctx, ids)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count engagement", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.PostListResponse{
		Total: total,
		Posts: engagement.BuildPosts(posts, counts),
	})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return h.respondWithPost(c, http.StatusOK, id)
}

// UpdatePost applies the fields present in the form and appends any files
func (h *PostHandler) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	values, err := formValues(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	if err := requirePost(ctx, h.postRepository, id); err != nil {
		return err
	}

	changes := models.UpdatePostRequest{
		Title:        optionalValue(values, "title"),
		Description:  optionalValue(values, "description"),
		AnnounceType: optionalValue(values, "announce_type"),
	}
	attachments, err := readAttachments(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.postRepository.UpdatePost(ctx, id, changes, attachments); err != nil {
		return notFoundOr(ctx, err, "Post not found")
	}
	return h.respondWithPost(c, http.StatusOK, id)
}

// DeletePost deletes a post and everything attached to it
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), id); err != nil {
		return notFoundOr(c.Request().Context(), err, "Post not found")
	}
	slog.InfoContext(c.Request().Context(), "post deleted", "post_id", id)
	return c.NoContent(http.StatusNoContent)
}

// GetAttachment streams an attachment's stored bytes
func (h *PostHandler) GetAttachment(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	attID, err := pathID(c, "att_id")
	if err != nil {
		return err
	}

	att, err := h.postRepository.GetAttachment(c.Request().Context(), postID, attID)
	if err != nil {
		return notFoundOr(c.Request().Context(), err, "Attachment not found")
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", att.Filename))
	return c.Blob(http.StatusOK, contentType, att.Data)
}

func (h *PostHandler) respondWithPost(c echo.Context, status int, id uint) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(ctx, err, "Post not found")
	}
	counts, err := h.engagementRepository.CountsForPost(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count engagement", "post_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(status, engagement.BuildPost(post, counts))
}

// readAttachments reads every file sent under the "files" field.
func readAttachments(c echo.Context) ([]models.Attachment, error) {
	form := c.Request().MultipartForm
	if form == nil {
		return nil, nil
	}

	var attachments []models.Attachment
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}

		contentType := fh.Header.Get(echo.HeaderContentType)
		if contentType == "" {
			contentType = defaultContentType
		}
		attachments = append(attachments, models.Attachment{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        int64(len(data)),
			IsImage:     strings.HasPrefix(contentType, "image/"),
			Data:        data,
		})
	}
	return attachments, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return v, nil
}
