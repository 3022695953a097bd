package models

import "time"

// Post is an intranet announcement. Author is free text, not a user reference.
type Post struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"not null"`
	Description  *string   `json:"description"`
	Author       string    `json:"author" gorm:"not null"`
	AnnounceType *string   `json:"announce_type"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`

	Attachments []Attachment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Reactions   []Reaction   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Replies     []Reply      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Shares      []Share      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Views       []PostView   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Attachment is a file stored inline with its post. Data is only read by
// the download endpoint.
type Attachment struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PostID      uint   `json:"post_id" gorm:"index;not null"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	IsImage     bool   `json:"is_image"`
	Data        []byte `json:"-"`
}

// CreatePostRequest is decoded from the multipart form of POST /api/posts/.
type CreatePostRequest struct {
	Title        string  `validate:"required"`
	Description  *string `validate:"omitempty"`
	Author       string  `validate:"required"`
	AnnounceType *string `validate:"omitempty"`
}

// UpdatePostRequest holds only the fields present in the form.
type UpdatePostRequest struct {
	Title        *string
	Description  *string
	AnnounceType *string
}

// Empty reports whether no field was supplied.
func (r UpdatePostRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.AnnounceType == nil
}

// EngagementCounts are computed with count queries, never stored.
type EngagementCounts struct {
	Views   int64
	Replies int64
	Shares  int64
}

// PostResponse is shared by create, get, list and update.
type PostResponse struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	Author       string       `json:"author"`
	AnnounceType *string      `json:"announce_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Attachments  []Attachment `json:"attachments"`
	Reactions    []Reaction   `json:"reactions"`
	ViewsCount   int64        `json:"views_count"`
	RepliesCount int64        `json:"replies_count"`
	SharesCount  int64        `json:"shares_count"`
	LikedUsers   []string     `json:"liked_users"`
	SeenBy       []string     `json:"seen_by"`
}

// PostListResponse is the body of GET /api/posts/.
type PostListResponse struct {
	Total int64          `json:"total"`
	Posts []PostResponse `json:"posts"`
}
