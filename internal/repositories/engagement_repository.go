package repositories

import (
	"context"
	"fmt"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// EngagementRepository computes per-post view, reply and share counts
type EngagementRepository interface {
	CountsForPost(ctx context.Context, postID uint) (models.EngagementCounts, error)
	CountsForPosts(ctx context.Context, postIDs []uint) (map[uint]models.EngagementCounts, error)
}

// PostgresEngagementRepository implements EngagementRepository for PostgreSQL
type PostgresEngagementRepository struct {
	db *gorm.DB
}

func NewPostgresEngagementRepository(db *gorm.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

// CountsForPost runs one count query per metric
func (r *PostgresEngagementRepository) CountsForPost(ctx context.Context, postID uint) (models.EngagementCounts, error) {
	var counts models.EngagementCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.PostView{}).Where("post_id = ?", postID).Count(&counts.Views).Error; err != nil {
		return counts, fmt.Errorf("count views: %w", err)
	}
	if err := db.Model(&models.Reply{}).Where("post_id = ?", postID).Count(&counts.Replies).Error; err != nil {
		return counts, fmt.Errorf("count replies: %w", err)
	}
	if err := db.Model(&models.Share{}).Where("post_id = ?", postID).Count(&counts.Shares).Error; err != nil {
		return counts, fmt.Errorf("count shares: %w", err)
	}
	return counts, nil
}

type postCount struct {
	PostID uint
	Count  int64
}

func (r *PostgresEngagementRepository) groupedCount(ctx context.Context, model interface{}, postIDs []uint) ([]postCount, error) {
	var rows []postCount
	err := r.db.WithContext(ctx).
		Model(model).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	return rows, err
}

// CountsForPosts runs one grouped query per metric over all ids. Posts with
// no rows are present with zero counts.
func (r *PostgresEngagementRepository) CountsForPosts(ctx context.Context, postIDs []uint) (map[uint]models.EngagementCounts, error) {
	result := make(map[uint]models.EngagementCounts, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	for _, id := range postIDs {
		result[id] = models.EngagementCounts{}
	}

	views, err := r.groupedCount(ctx, &models.PostView{}, postIDs)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	for _, row := range views {
		c := result[row.PostID]
		c.Views = row.Count
		result[row.PostID] = c
	}

	replies, err := r.groupedCount(ctx, &models.Reply{}, postIDs)
	if err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}
	for _, row := range replies {
		c := result[row.PostID]
		c.Replies = row.Count
		result[row.PostID] = c
	}

	shares, err := r.groupedCount(ctx, &models.Share{}, postIDs)
	if err != nil {
		return nil, fmt.Errorf("count shares: %w", err)
	}
	for _, row := range shares {
		c := result[row.PostID]
		c.Shares = row.Count
		result[row.PostID] = c
	}
	return result, nil
}
