package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// ViewRepository defines the interface for view tracking
type ViewRepository interface {
	CreateView(ctx context.Context, view *models.PostView) error
}

// PostgresViewRepository implements ViewRepository for PostgreSQL
type PostgresViewRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresViewRepository(db *gorm.DB) *PostgresViewRepository {
	return &PostgresViewRepository{db: db, now: time.Now}
}

// CreateView records a view, stamping it with the current time when unset
func (r *PostgresViewRepository) CreateView(ctx context.Context, view *models.PostView) error {
	if view.ViewedAt == nil {
		now := r.now()
		view.ViewedAt = &now
	}
	if err := r.db.WithContext(ctx).Create(view).Error; err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	return nil
}
