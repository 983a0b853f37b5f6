package domain

import "context"

// Bot defaults applied when a create request leaves the field empty.
const (
	DefaultBotModel          = "gemini-2.0-flash"
	DefaultBotWelcomeMessage = "Hi! How can I help you today?"
)

// Bot is a configured chat assistant owned by a user.
type Bot struct {
	BaseModel
	Name           string `gorm:"size:100;not null" json:"name"`
	SystemPrompt   string `gorm:"type:text;not null" json:"systemPrompt"`
	Model          string `gorm:"size:100;not null;default:gemini-2.0-flash" json:"model"`
	WelcomeMessage string `gorm:"size:500;not null" json:"welcomeMessage"`
	UserID         string `gorm:"type:uuid;not null;index" json:"userId"`
	IsActive       bool   `gorm:"not null" json:"isActive"`
}

// CreateBotInput holds the fields accepted when creating a bot.
type CreateBotInput struct {
	Name           string
	SystemPrompt   string
	Model          string
	WelcomeMessage *string
	IsActive       *bool
	UserID         string
}

// UpdateBotInput holds a partial bot update; nil fields are left unchanged.
type UpdateBotInput struct {
	Name           *string
	SystemPrompt   *string
	Model          *string
	WelcomeMessage *string
	IsActive       *bool
}

// BotRepository defines the data access interface for bots.
type BotRepository interface {
	Create(ctx context.Context, bot *Bot) error
	GetByID(ctx context.Context, id string) (*Bot, error)
	List(ctx context.Context, q ListQuery) (*ListResult[Bot], error)
	Update(ctx context.Context, bot *Bot) error
	// Delete removes the bot together with its documents, leads and conversations.
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// BotService defines the business logic interface for bots.
type BotService interface {
	CreateBot(ctx context.Context, in CreateBotInput) (*Bot, error)
	GetBot(ctx context.Context, id string) (*Bot, error)
	ListBots(ctx context.Context, q ListQuery) (*ListResult[Bot], error)
	UpdateBot(ctx context.Context, id string, in UpdateBotInput) (*Bot, error)
	DeleteBot(ctx context.Context, id string) error
	BulkDeleteBots(ctx context.Context, ids []string) (*BulkDeleteResult, error)
}
