package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, skip, limit int) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, id uint, changes models.UpdatePostRequest, attachments []models.Attachment) error
	DeletePost(ctx context.Context, id uint) error
	PostExists(ctx context.Context, id uint) (bool, error)
	GetAttachment(ctx context.Context, postID, attachmentID uint) (*models.Attachment, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// attachment columns without the payload
var attachmentMetaColumns = []string{"id", "post_id", "filename", "content_type", "size", "is_image"}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Select(attachmentMetaColumns).Order("id")
		}).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Views", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
}

// CreatePost inserts the post and any attachments set on it in one transaction
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetPostByID loads a post with attachment metadata, reactions and views
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns one page, newest first, and the total number of posts
func (r *PostgresPostRepository) ListPosts(ctx context.Context, skip, limit int) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	posts := []models.Post{}
	err := withRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// UpdatePost applies the supplied fields and appends attachments
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, id uint, changes models.UpdatePostRequest, attachments []models.Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return err
		}

		if !changes.Empty() {
			fields := map[string]interface{}{}
			if changes.Title != nil {
				fields["title"] = *changes.Title
			}
			if changes.Description != nil {
				fields["description"] = *changes.Description
			}
			if changes.AnnounceType != nil {
				fields["announce_type"] = *changes.AnnounceType
			}
			if err := tx.Model(&post).Updates(fields).Error; err != nil {
				return fmt.Errorf("update post %d: %w", id, err)
			}
		}

		for i := range attachments {
			attachments[i].PostID = id
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return fmt.Errorf("add attachments to post %d: %w", id, err)
			}
		}
		return nil
	})
}

// DeletePost removes the post and every row it owns
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return err
		}
		children := []interface{}{
			&models.Attachment{},
			&models.Reaction{},
			&models.Reply{},
			&models.Share{},
			&models.PostView{},
		}
		for _, child := range children {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete children of post %d: %w", id, err)
			}
		}
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		return nil
	})
}

// PostExists reports whether a post with id exists
func (r *PostgresPostRepository) PostExists(ctx context.Context, id uint) (bool, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Select("id").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check post %d: %w", id, err)
	}
	return true, nil
}

// GetAttachment loads an attachment with its payload. It returns
// gorm.ErrRecordNotFound when the attachment does not belong to postID.
func (r *PostgresPostRepository) GetAttachment(ctx context.Context, postID, attachmentID uint) (*models.Attachment, error) {
	var att models.Attachment
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", attachmentID, postID).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}
