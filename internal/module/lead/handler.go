package lead

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

// LeadHandler handles REST API requests for the lead resource.
type LeadHandler struct {
	svc domain.LeadService
}

// NewLeadHandler creates a new LeadHandler with the given service.
func NewLeadHandler(svc domain.LeadService) *LeadHandler {
	return &LeadHandler{svc: svc}
}

// Create handles POST /api/v1/leads. A lead for a known (botId, senderId)
// pair is merged into the stored one; the response is 201 either way.
func (h *LeadHandler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	lead, err := h.svc.UpsertLead(c.Request.Context(), domain.CreateLeadInput{
		BotID:    pkg.CanonicalUUID(req.BotID),
		SenderID: req.SenderID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Metadata: req.Metadata,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, lead)
}

// Get handles GET /api/v1/leads/:id.
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, lead)
}

// List handles GET /api/v1/leads?botId=.
func (h *LeadHandler) List(c *gin.Context) {
	var q domain.ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	botID, ok := pkg.OptionalQueryUUID(c, "botId")
	if !ok {
		return
	}

	result, err := h.svc.ListLeads(c.Request.Context(), q, botID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PATCH /api/v1/leads/:id.
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	lead, err := h.svc.UpdateLead(c.Request.Context(), id, domain.UpdateLeadInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Metadata: req.Metadata,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, lead)
}

// Delete handles DELETE /api/v1/leads/:id.
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteLead(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.NoContent(c)
}

// BulkDelete handles DELETE /api/v1/leads/bulk.
func (h *LeadHandler) BulkDelete(c *gin.Context) {
	var req pkg.BulkDeleteRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.BulkDeleteLeads(c.Request.Context(), req.CanonicalIDs())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}
