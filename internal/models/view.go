package models

import "time"

// PostView is one view of a post. Repeat views are all kept.
type PostView struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	PostID   uint       `json:"post_id" gorm:"index;not null"`
	User     string     `json:"user" gorm:"column:user;not null"`
	ViewedAt *time.Time `json:"viewed_at"`
}

type CreateViewRequest struct {
	User string `json:"user" form:"user" validate:"required"`
}
