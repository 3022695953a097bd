package repositories

import (
	"github.com/aidenai/intranet/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the API reads and writes
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Attachment{},
		&models.Reaction{},
		&models.Reply{},
		&models.Share{},
		&models.PostView{},
		&models.Document{},
	)
}
