package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/aidenai/intranet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// DocumentHandler handles HTTP requests related to shared documents
type DocumentHandler struct {
	documentRepository repositories.DocumentRepository
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentRepo repositories.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{documentRepository: documentRepo}
}

// RegisterDocumentRoutes registers document routes on the /api/documents group
func (h *DocumentHandler) RegisterDocumentRoutes(g *echo.Group) {
	for _, root := range []string{"", "/"} {
		g.POST(root, h.CreateDocument)
		g.GET(root, h.ListDocuments)
	}
	g.GET("/:id", h.GetDocument)
	g.PUT("/:id", h.UpdateDocument)
	g.DELETE("/:id", h.DeleteDocument)
}

// CreateDocument registers a document from a JSON body
func (h *DocumentHandler) CreateDocument(c echo.Context) error {
	var req models.CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	doc := &models.Document{Name: req.Name, Description: req.Description, Link: req.Link}
	if err := h.documentRepository.CreateDocument(c.Request().Context(), doc); err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to create document", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListDocuments returns a page of documents with the overall total
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil {
		return err
	}

	docs, total, err := h.documentRepository.ListDocuments(c.Request().Context(), skip, limit)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to list documents", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, models.DocumentListResponse{Total: total, Documents: docs})
}

// GetDocument retrieves a document by ID
func (h *DocumentHandler) GetDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documentRepository.GetDocumentByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(c.Request().Context(), err, "Document not found")
	}
	return c.JSON(http.StatusOK, doc)
}

// UpdateDocument changes only the fields present in the body
func (h *DocumentHandler) UpdateDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	doc, err := h.documentRepository.UpdateDocument(c.Request().Context(), id, req)
	if err != nil {
		return notFoundOr(c.Request().Context(), err, "Document not found")
	}
	return c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.documentRepository.DeleteDocument(c.Request().Context(), id); err != nil {
		return notFoundOr(c.Request().Context(), err, "Document not found")
	}
	return c.NoContent(http.StatusNoContent)
}
