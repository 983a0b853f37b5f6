package domain

import "context"

// MessageRole identifies the author of a chat message.
type MessageRole string

// Message roles as stored in the messages table.
const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// Conversation is the chat thread between one sender and one bot.
type Conversation struct {
	BaseModel
	BotID    string    `gorm:"type:uuid;not null;index:idx_conversations_bot_sender" json:"botId"`
	SenderID string    `gorm:"size:255;not null;index:idx_conversations_bot_sender" json:"senderId"`
	Title    *string   `gorm:"size:200" json:"title"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Message is a single turn persisted in a conversation.
type Message struct {
	AppendOnlyModel
	ConversationID string      `gorm:"type:uuid;not null;index" json:"conversationId"`
	Role           MessageRole `gorm:"size:16;not null" json:"role"`
	Content        string      `gorm:"type:text;not null" json:"content"`
}

// ChatTurn is one entry of the history handed to the language model.
// Role is "user" or "model".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History roles used by ChatTurn.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// ChatReply is the result of a public chat call.
type ChatReply struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
}

// ConversationRepository defines the data access interface for conversations
// and their messages.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	// GetWithMessages loads the conversation and all its messages, oldest first.
	GetWithMessages(ctx context.Context, id string) (*Conversation, error)
	FindByBotAndSender(ctx context.Context, botID, senderID string) (*Conversation, error)
	// List pages through conversations, restricted to one bot when botID is not empty.
	List(ctx context.Context, q ListQuery, botID string) (*ListResult[Conversation], error)
	// ListMessages returns up to limit messages oldest first; limit <= 0 means all.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)
	// AppendMessages stores msgs and bumps the conversation's updated_at atomically.
	AppendMessages(ctx context.Context, conversationID string, msgs []Message) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// ConversationService defines the admin operations on conversations.
type ConversationService interface {
	ListConversations(ctx context.Context, q ListQuery, botID string) (*ListResult[Conversation], error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	BulkDeleteConversations(ctx context.Context, ids []string) (*BulkDeleteResult, error)
}

// ChatService defines the public chat operations.
type ChatService interface {
	Chat(ctx context.Context, botID, senderID, message string) (*ChatReply, error)
	History(ctx context.Context, botID, senderID string) ([]Message, error)
}
