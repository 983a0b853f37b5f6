package document

import "github.com/gin-gonic/gin"

// DocumentModule implements the app.Module interface for the document domain.
type DocumentModule struct {
	handler *DocumentHandler
}

// NewModule creates a new DocumentModule with the given handler.
// Panics if h is nil.
func NewModule(h *DocumentHandler) *DocumentModule {
	if h == nil {
		panic("document.NewModule: handler must not be nil")
	}
	return &DocumentModule{handler: h}
}

// RegisterRoutes registers the admin-only document routes.
func (m *DocumentModule) RegisterRoutes(_, _, admin *gin.RouterGroup) {
	docs := admin.Group("/documents")
	docs.GET("", m.handler.List)
	docs.POST("", m.handler.Create)
	docs.DELETE("/bulk", m.handler.BulkDelete)
	docs.GET("/:id", m.handler.Get)
	docs.PATCH("/:id", m.handler.Update)
	docs.DELETE("/:id", m.handler.Delete)
}
