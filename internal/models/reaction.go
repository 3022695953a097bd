package models

// Reaction is a labelled reaction on a post. Labels compare case-insensitively.
type Reaction struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PostID   uint   `json:"post_id" gorm:"index;not null"`
	User     string `json:"user" gorm:"column:user;not null"`
	Reaction string `json:"reaction"`
}

// ReactionRequest is used by both adding and removing reactions.
type ReactionRequest struct {
	User     string `json:"user" form:"user" query:"user" validate:"required"`
	Reaction string `json:"reaction" form:"reaction" query:"reaction" validate:"required"`
}
