package bot

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/middleware"
	"github.com/simp-lee/genbot/internal/pkg"
)

// BotHandler handles REST API requests for the bot resource.
type BotHandler struct {
	svc domain.BotService
}

// NewBotHandler creates a new BotHandler with the given service.
func NewBotHandler(svc domain.BotService) *BotHandler {
	return &BotHandler{svc: svc}
}

// Create handles POST /api/v1/bots. The owner is the authenticated caller.
func (h *BotHandler) Create(c *gin.Context) {
	var req CreateBotRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	var ownerID string
	if p := middleware.GetPrincipal(c); p != nil {
		ownerID = p.UserID
	}

	bot, err := h.svc.CreateBot(c.Request.Context(), req.toInput(ownerID))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, bot)
}

// Get handles GET /api/v1/bots/:id.
func (h *BotHandler) Get(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	bot, err := h.svc.GetBot(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, bot)
}

// List handles GET /api/v1/bots.
func (h *BotHandler) List(c *gin.Context) {
	var q domain.ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}

	result, err := h.svc.ListBots(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PATCH /api/v1/bots/:id.
func (h *BotHandler) Update(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateBotRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	bot, err := h.svc.UpdateBot(c.Request.Context(), id, req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, bot)
}

// Delete handles DELETE /api/v1/bots/:id.
func (h *BotHandler) Delete(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteBot(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.NoContent(c)
}

// BulkDelete handles DELETE /api/v1/bots/bulk.
func (h *BotHandler) BulkDelete(c *gin.Context) {
	var req pkg.BulkDeleteRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.BulkDeleteBots(c.Request.Context(), req.CanonicalIDs())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}
