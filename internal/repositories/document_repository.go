package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// DocumentRepository defines the interface for document data operations
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id uint) (*models.Document, error)
	ListDocuments(ctx context.Context, skip, limit int) ([]models.Document, int64, error)
	UpdateDocument(ctx context.Context, id uint, changes models.UpdateDocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, id uint) error
}

// PostgresDocumentRepository implements DocumentRepository for PostgreSQL
type PostgresDocumentRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
func NewPostgresDocumentRepository(db *gorm.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db, now: time.Now}
}

// CreateDocument inserts a document stamped with the current time
func (r *PostgresDocumentRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	doc.LastUpdated = r.now()
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocumentByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetDocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns one page, most recently updated first, and the total
func (r *PostgresDocumentRepository) ListDocuments(ctx context.Context, skip, limit int) ([]models.Document, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Document{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	docs := []models.Document{}
	err := r.db.WithContext(ctx).
		Order("last_updated DESC").
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// UpdateDocument applies the supplied fields and bumps last_updated. An
// empty change set leaves the row untouched.
func (r *PostgresDocumentRepository) UpdateDocument(ctx context.Context, id uint, changes models.UpdateDocumentRequest) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			return err
		}
		if changes.Empty() {
			return nil
		}

		fields := map[string]interface{}{"last_updated": r.now()}
		if changes.Name != nil {
			fields["name"] = *changes.Name
		}
		if changes.Description != nil {
			fields["description"] = *changes.Description
		}
		if changes.Link != nil {
			fields["link"] = *changes.Link
		}
		if err := tx.Model(&doc).Updates(fields).Error; err != nil {
			return fmt.Errorf("update document %d: %w", id, err)
		}
		doc = models.Document{}
		return tx.First(&doc, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument deletes a document by ID
func (r *PostgresDocumentRepository) DeleteDocument(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Document{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete document %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
