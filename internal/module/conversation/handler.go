package conversation

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

// ConversationHandler handles the admin conversation endpoints.
type ConversationHandler struct {
	svc domain.ConversationService
}

// NewConversationHandler creates a new ConversationHandler with the given service.
func NewConversationHandler(svc domain.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List handles GET /api/v1/conversations?botId=.
func (h *ConversationHandler) List(c *gin.Context) {
	var q domain.ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	botID, ok := pkg.OptionalQueryUUID(c, "botId")
	if !ok {
		return
	}

	result, err := h.svc.ListConversations(c.Request.Context(), q, botID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/conversations/:id.
func (h *ConversationHandler) Get(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	conv, err := h.svc.GetConversation(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, conv)
}

// Delete handles DELETE /api/v1/conversations/:id.
func (h *ConversationHandler) Delete(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteConversation(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.NoContent(c)
}

// BulkDelete handles DELETE /api/v1/conversations/bulk.
func (h *ConversationHandler) BulkDelete(c *gin.Context) {
	var req pkg.BulkDeleteRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.BulkDeleteConversations(c.Request.Context(), req.CanonicalIDs())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}

// ChatHandler handles the public chat endpoints.
type ChatHandler struct {
	svc domain.ChatService
}

// NewChatHandler creates a new ChatHandler with the given service.
func NewChatHandler(svc domain.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat handles POST /api/v1/chat/:botId.
func (h *ChatHandler) Chat(c *gin.Context) {
	botID, ok := pkg.PathUUID(c, "botId")
	if !ok {
		return
	}
	var req ChatRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), botID, req.SenderID, req.Message)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, reply)
}

// History handles GET /api/v1/chat/history/:botId?senderId=.
func (h *ChatHandler) History(c *gin.Context) {
	botID, ok := pkg.PathUUID(c, "botId")
	if !ok {
		return
	}
	var q HistoryQuery
	if !pkg.BindQuery(c, &q) {
		return
	}

	msgs, err := h.svc.History(c.Request.Context(), botID, q.SenderID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, msgs)
}
