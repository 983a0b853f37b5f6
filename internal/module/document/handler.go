package document

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

// DocumentHandler handles REST API requests for the document resource.
type DocumentHandler struct {
	svc domain.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler with the given service.
func NewDocumentHandler(svc domain.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Create handles POST /api/v1/documents.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.CreateDocument(c.Request.Context(), domain.CreateDocumentInput{
		BotID:   pkg.CanonicalUUID(req.BotID),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, doc)
}

// Get handles GET /api/v1/documents/:id.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.svc.GetDocument(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, doc)
}

// List handles GET /api/v1/documents?botId=.
func (h *DocumentHandler) List(c *gin.Context) {
	var q domain.ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	botID, ok := pkg.OptionalQueryUUID(c, "botId")
	if !ok {
		return
	}

	result, err := h.svc.ListDocuments(c.Request.Context(), q, botID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PATCH /api/v1/documents/:id.
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.UpdateDocument(c.Request.Context(), id, domain.UpdateDocumentInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteDocument(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.NoContent(c)
}

// BulkDelete handles DELETE /api/v1/documents/bulk.
func (h *DocumentHandler) BulkDelete(c *gin.Context) {
	var req pkg.BulkDeleteRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.BulkDeleteDocuments(c.Request.Context(), req.CanonicalIDs())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}
