package models

import "time"

// Share records that a user shared a post, optionally naming the platform
type Share struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	User      string    `json:"user" gorm:"column:user;not null"`
	Platform  *string   `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateShareRequest struct {
	User     string `json:"user" form:"user" validate:"required"`
	Platform string `json:"platform" form:"platform"`
}
