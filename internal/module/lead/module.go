package lead

import "github.com/gin-gonic/gin"

// LeadModule implements the app.Module interface for the lead domain.
type LeadModule struct {
	handler *LeadHandler
}

// NewModule creates a new LeadModule with the given handler.
// Panics if h is nil.
func NewModule(h *LeadHandler) *LeadModule {
	if h == nil {
		panic("lead.NewModule: handler must not be nil")
	}
	return &LeadModule{handler: h}
}

// RegisterRoutes registers the admin-only lead routes.
func (m *LeadModule) RegisterRoutes(_, _, admin *gin.RouterGroup) {
	leads := admin.Group("/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.DELETE("/bulk", m.handler.BulkDelete)
	leads.GET("/:id", m.handler.Get)
	leads.PATCH("/:id", m.handler.Update)
	leads.DELETE("/:id", m.handler.Delete)
}
