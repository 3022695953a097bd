package repositories

import (
	"context"
	"fmt"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	CreateReply(ctx context.Context, reply *models.Reply) error
	GetRepliesByPostID(ctx context.Context, postID uint) ([]models.Reply, error)
}

// PostgresReplyRepository implements ReplyRepository for PostgreSQL
type PostgresReplyRepository struct {
	db *gorm.DB
}

// NewPostgresReplyRepository creates a new PostgresReplyRepository
func NewPostgresReplyRepository(db *gorm.DB) *PostgresReplyRepository {
	return &PostgresReplyRepository{db: db}
}

// CreateReply creates a new reply
func (r *PostgresReplyRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return fmt.Errorf("create reply: %w", err)
	}
	return nil
}

// GetRepliesByPostID retrieves the replies of a post in insertion order
func (r *PostgresReplyRepository) GetRepliesByPostID(ctx context.Context, postID uint) ([]models.Reply, error) {
	replies := []models.Reply{}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("list replies of post %d: %w", postID, err)
	}
	return replies, nil
}
