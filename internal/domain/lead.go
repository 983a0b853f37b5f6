package domain

import "context"

// Lead is contact information a bot collected from a chat sender.
type Lead struct {
	AppendOnlyModel
	BotID    string         `gorm:"type:uuid;not null;index:idx_leads_bot_sender" json:"botId"`
	SenderID string         `gorm:"size:255;not null;index:idx_leads_bot_sender" json:"senderId"`
	Name     *string        `gorm:"size:100" json:"name"`
	Email    *string        `gorm:"size:255" json:"email"`
	Phone    *string        `gorm:"size:20" json:"phone"`
	Metadata map[string]any `gorm:"serializer:json" json:"metadata"`
}

// CreateLeadInput holds the fields accepted when creating or upserting a lead.
type CreateLeadInput struct {
	BotID    string
	SenderID string
	Name     *string
	Email    *string
	Phone    *string
	Metadata map[string]any
}

// UpdateLeadInput holds a partial lead update; nil fields are left unchanged.
type UpdateLeadInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Metadata map[string]any
}

// LeadRepository defines the data access interface for leads.
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	FindByBotAndSender(ctx context.Context, botID, senderID string) (*Lead, error)
	// List pages through leads, restricted to one bot when botID is not empty.
	List(ctx context.Context, q ListQuery, botID string) (*ListResult[Lead], error)
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// LeadService defines the business logic interface for leads.
type LeadService interface {
	// UpsertLead creates a lead, or merges into the existing one for the same
	// bot and sender.
	UpsertLead(ctx context.Context, in CreateLeadInput) (*Lead, error)
	GetLead(ctx context.Context, id string) (*Lead, error)
	ListLeads(ctx context.Context, q ListQuery, botID string) (*ListResult[Lead], error)
	UpdateLead(ctx context.Context, id string, in UpdateLeadInput) (*Lead, error)
	DeleteLead(ctx context.Context, id string) error
	BulkDeleteLeads(ctx context.Context, ids []string) (*BulkDeleteResult, error)
}
