package document

// CreateDocumentRequest represents the input for creating a document.
type CreateDocumentRequest struct {
	BotID   string `json:"botId" binding:"required,uuid_rfc4122"`
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1,max=50000"`
}

// UpdateDocumentRequest represents a partial document update.
type UpdateDocumentRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string `json:"content" binding:"omitempty,min=1,max=50000"`
}
