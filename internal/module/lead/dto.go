package lead

// CreateLeadRequest represents the input for creating or upserting a lead.
type CreateLeadRequest struct {
	BotID    string         `json:"botId" binding:"required,uuid_rfc4122"`
	SenderID string         `json:"senderId" binding:"required,min=1,max=255"`
	Name     *string        `json:"name" binding:"omitempty,max=100"`
	Email    *string        `json:"email" binding:"omitempty,email,max=255"`
	Phone    *string        `json:"phone" binding:"omitempty,max=20"`
	Metadata map[string]any `json:"metadata"`
}

// UpdateLeadRequest represents a partial lead update.
type UpdateLeadRequest struct {
	Name     *string        `json:"name" binding:"omitempty,max=100"`
	Email    *string        `json:"email" binding:"omitempty,email,max=255"`
	Phone    *string        `json:"phone" binding:"omitempty,max=20"`
	Metadata map[string]any `json:"metadata"`
}
