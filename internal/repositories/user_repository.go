package repositories

import (
	"context"
	"fmt"

	"github.com/aidenai/intranet/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	FindOrCreate(ctx context.Context, email, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// FindOrCreate returns the user registered under email, creating it on first
// sight. The stored name is never touched for an existing user.
func (r *PostgresUserRepository) FindOrCreate(ctx context.Context, email, name string) (*models.User, error) {
	var user models.User
	attrs := models.User{ID: uuid.NewString()}
	if name != "" {
		attrs.Name = &name
	}
	err := r.db.WithContext(ctx).
		Where(models.User{Email: email}).
		Attrs(attrs).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("find or create user %q: %w", email, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by its UUID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
