package bot

import "github.com/gin-gonic/gin"

// BotModule implements the app.Module interface for the bot domain.
type BotModule struct {
	handler *BotHandler
}

// NewModule creates a new BotModule with the given handler.
// Panics if h is nil.
func NewModule(h *BotHandler) *BotModule {
	if h == nil {
		panic("bot.NewModule: handler must not be nil")
	}
	return &BotModule{handler: h}
}

// RegisterRoutes registers the admin-only bot routes.
func (m *BotModule) RegisterRoutes(_, _, admin *gin.RouterGroup) {
	bots := admin.Group("/bots")
	bots.GET("", m.handler.List)
	bots.POST("", m.handler.Create)
	bots.DELETE("/bulk", m.handler.BulkDelete)
	bots.GET("/:id", m.handler.Get)
	bots.PATCH("/:id", m.handler.Update)
	bots.DELETE("/:id", m.handler.Delete)
}
