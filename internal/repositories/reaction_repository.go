package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	FindMatching(ctx context.Context, postID uint, user, reaction string) (*models.Reaction, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	CreateIfAbsent(ctx context.Context, reaction *models.Reaction) (bool, error)
	DeleteMatching(ctx context.Context, postID uint, user, reaction string) (int64, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func matching(db *gorm.DB, postID uint, user, reaction string) *gorm.DB {
	// map conditions get their column names quoted; "user" is reserved in PostgreSQL
	return db.Where(map[string]interface{}{"post_id": postID, "user": user}).
		Where("LOWER(reaction) = ?", strings.ToLower(reaction))
}

// FindMatching returns the first reaction by user on the post with the same
// label, compared case-insensitively
func (r *PostgresReactionRepository) FindMatching(ctx context.Context, postID uint, user, reaction string) (*models.Reaction, error) {
	var existing models.Reaction
	err := matching(r.db.WithContext(ctx), postID, user, reaction).Order("id").First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// CreateReaction inserts a reaction row
func (r *PostgresReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).Create(reaction).Error; err != nil {
		return fmt.Errorf("create reaction: %w", err)
	}
	return nil
}

// CreateIfAbsent stores reaction unless a matching row already exists, in
// which case reaction is overwritten with the stored row. The check and the
// insert are not atomic; concurrent requests may both insert.
func (r *PostgresReactionRepository) CreateIfAbsent(ctx context.Context, reaction *models.Reaction) (bool, error) {
	existing, err := r.FindMatching(ctx, reaction.PostID, reaction.User, reaction.Reaction)
	if err == nil {
		*reaction = *existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find reaction: %w", err)
	}
	if err := r.CreateReaction(ctx, reaction); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteMatching removes every matching reaction and reports how many went
func (r *PostgresReactionRepository) DeleteMatching(ctx context.Context, postID uint, user, reaction string) (int64, error) {
	res := matching(r.db.WithContext(ctx), postID, user, reaction).Delete(&models.Reaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete reactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
