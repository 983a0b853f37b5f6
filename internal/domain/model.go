package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the common base struct for mutable domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a time-ordered UUID when the caller did not set one.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	return assignID(&m.ID)
}

// AppendOnlyModel is the base for rows that are never updated after insert,
// such as leads and chat messages.
type AppendOnlyModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate assigns a time-ordered UUID when the caller did not set one.
func (m *AppendOnlyModel) BeforeCreate(*gorm.DB) error {
	return assignID(&m.ID)
}

// NewID returns a new UUIDv7 string.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	v, err := NewID()
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Sort orders accepted by ListQuery.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListQuery holds the page, search, filter and sort parameters of a list request.
//
// Binding rejects page < 1, limit outside [1,100] and unknown orders, so the
// list engine only ever sees in-range values from HTTP callers.
type ListQuery struct {
	Page         int    `form:"page,default=1" json:"page" binding:"min=1"`
	Limit        int    `form:"limit,default=20" json:"limit" binding:"min=1,max=100"`
	Search       string `form:"search" json:"search,omitempty"`
	FilterValue  string `form:"filterValue" json:"filterValue,omitempty"`
	FilterFields string `form:"filterFields" json:"filterFields,omitempty"`
	Sort         string `form:"sort" json:"sort,omitempty"`
	Order        string `form:"order,default=desc" json:"order" binding:"oneof=asc desc"`
}

// PaginationMeta is the envelope returned alongside every page of results.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewPaginationMeta computes the pagination envelope for the requested page
// and limit given the total number of matching rows.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// ListResult is one page of rows plus its pagination metadata.
type ListResult[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// Models returns every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&Bot{},
		&Document{},
		&Lead{},
		&Conversation{},
		&Message{},
	}
}

// BulkDeleteResult reports how many rows a bulk delete removed.
type BulkDeleteResult struct {
	Deleted int64 `json:"deleted"`
}
