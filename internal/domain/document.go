package domain

import "context"

// Document is a knowledge-base entry injected into a bot's system prompt.
type Document struct {
	BaseModel
	BotID   string `gorm:"type:uuid;not null;index" json:"botId"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
}

// CreateDocumentInput holds the fields accepted when creating a document.
type CreateDocumentInput struct {
	BotID   string
	Title   string
	Content string
}

// UpdateDocumentInput holds a partial document update; nil fields are left unchanged.
type UpdateDocumentInput struct {
	Title   *string
	Content *string
}

// DocumentRepository defines the data access interface for documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	// List pages through documents, restricted to one bot when botID is not empty.
	List(ctx context.Context, q ListQuery, botID string) (*ListResult[Document], error)
	ListByBot(ctx context.Context, botID string) ([]Document, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// DocumentService defines the business logic interface for documents.
type DocumentService interface {
	CreateDocument(ctx context.Context, in CreateDocumentInput) (*Document, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, q ListQuery, botID string) (*ListResult[Document], error)
	UpdateDocument(ctx context.Context, id string, in UpdateDocumentInput) (*Document, error)
	DeleteDocument(ctx context.Context, id string) error
	BulkDeleteDocuments(ctx context.Context, ids []string) (*BulkDeleteResult, error)
}
