package models

import "time"

// Reply is an append-only comment on a post
type Reply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	User      string    `json:"user" gorm:"column:user;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReplyRequest defines the form for adding a reply
type CreateReplyRequest struct {
	User    string `json:"user" form:"user" validate:"required"`
	Content string `json:"content" form:"content" validate:"required"`
}
