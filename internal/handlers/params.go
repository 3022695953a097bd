package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// pathID parses a numeric path parameter, answering 422 when it is not one.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s must be an integer", name))
	}
	return uint(id), nil
}

// requirePost answers 404 unless the post exists.
func requirePost(ctx context.Context, posts repositories.PostRepository, id uint) error {
	ok, err := posts.PostExists(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check post", "post_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load post")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a 404 with msg and anything else to a 500.
func notFoundOr(ctx context.Context, err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msg)
	}
	slog.ErrorContext(ctx, "repository error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// formValues returns the submitted form fields. net/http only reads
// urlencoded bodies for POST, PUT and PATCH, so DELETE bodies are parsed here.
// Query parameters fill in fields the body does not carry.
func formValues(c echo.Context) (url.Values, error) {
	req := c.Request()
	values := url.Values{}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	switch {
	case req.Method == http.MethodDelete && mediaType == echo.MIMEApplicationForm:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if values, err = url.ParseQuery(string(body)); err != nil {
			return nil, err
		}
	case mediaType == echo.MIMEApplicationForm || strings.HasPrefix(mediaType, "multipart/"):
		params, err := c.FormParams()
		if err != nil {
			return nil, err
		}
		values = params
	}

	for key, vals := range c.QueryParams() {
		if _, ok := values[key]; !ok {
			values[key] = vals
		}
	}
	return values, nil
}

// optionalValue returns a pointer to the field value, or nil when the field
// is missing or empty.
func optionalValue(values url.Values, key string) *string {
	v := values.Get(key)
	if v == "" {
		return nil
	}
	return &v
}
