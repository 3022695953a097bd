package models

import "time"

// Document is a pointer to a file kept in SharePoint.
type Document struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description"`
	Link        string    `json:"link" gorm:"size:500;not null"`
	LastUpdated time.Time `json:"last_updated" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateDocumentRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	Link        string  `json:"link" validate:"required,min=1,max=500"`
}

// UpdateDocumentRequest carries only the fields sent in the body.
type UpdateDocumentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Link        *string `json:"link" validate:"omitempty,min=1,max=500"`
}

func (r UpdateDocumentRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Link == nil
}

type DocumentListResponse struct {
	Total     int64      `json:"total"`
	Documents []Document `json:"documents"`
}
