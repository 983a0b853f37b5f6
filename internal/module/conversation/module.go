package conversation

import "github.com/gin-gonic/gin"

// ConversationModule implements the app.Module interface for conversations
// and the public chat API.
type ConversationModule struct {
	admin *ConversationHandler
	chat  *ChatHandler
}

// NewModule creates a new ConversationModule.
// Panics if either handler is nil.
func NewModule(admin *ConversationHandler, chat *ChatHandler) *ConversationModule {
	if admin == nil || chat == nil {
		panic("conversation.NewModule: handlers must not be nil")
	}
	return &ConversationModule{admin: admin, chat: chat}
}

// RegisterRoutes registers the public chat routes and the admin-only
// conversation routes. Conversations are created by chatting, so there is
// no POST or PATCH.
func (m *ConversationModule) RegisterRoutes(public, _, admin *gin.RouterGroup) {
	chat := public.Group("/chat")
	chat.POST("/:botId", m.chat.Chat)
	chat.GET("/history/:botId", m.chat.History)

	convs := admin.Group("/conversations")
	convs.GET("", m.admin.List)
	convs.DELETE("/bulk", m.admin.BulkDelete)
	convs.GET("/:id", m.admin.Get)
	convs.DELETE("/:id", m.admin.Delete)
}
