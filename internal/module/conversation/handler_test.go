package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const (
	convID = "0192f1b4-7c1e-7a10-8d5e-2b3c4d5e6f70"
	botID  = "0192f1b4-7c1e-7a10-8d5e-aaaaaaaaaaaa"
)

// mockConversationService implements domain.ConversationService.
type mockConversationService struct {
	listBotID string
	err       error
}

func (m *mockConversationService) ListConversations(_ context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Conversation], error) {
	m.listBotID = botID
	return &domain.ListResult[domain.Conversation]{Data: []domain.Conversation{}, Meta: domain.NewPaginationMeta(q.Page, q.Limit, 0)}, nil
}

func (m *mockConversationService) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Conversation{
		BaseModel: domain.BaseModel{ID: id},
		Messages:  []domain.Message{{Role: domain.MessageRoleUser, Content: "hi"}},
	}, nil
}

func (m *mockConversationService) DeleteConversation(context.Context, string) error { return m.err }

func (m *mockConversationService) BulkDeleteConversations(_ context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	return &domain.BulkDeleteResult{Deleted: int64(len(ids))}, nil
}

// mockChatService implements domain.ChatService.
type mockChatService struct {
	gotBotID, gotSender, gotMessage string
	err                             error
}

func (m *mockChatService) Chat(_ context.Context, botID, senderID, message string) (*domain.ChatReply, error) {
	m.gotBotID, m.gotSender, m.gotMessage = botID, senderID, message
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ChatReply{Reply: "hello", ConversationID: convID}, nil
}

func (m *mockChatService) History(_ context.Context, botID, senderID string) ([]domain.Message, error) {
	m.gotBotID, m.gotSender = botID, senderID
	return []domain.Message{}, m.err
}

func setupRouter(conv domain.ConversationService, chat domain.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewModule(NewConversationHandler(conv), NewChatHandler(chat)).RegisterRoutes(api, api, api)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatHandler_Chat(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"success", "/api/v1/chat/" + botID, `{"senderId":"visitor-1","message":"Hi"}`, nil, http.StatusOK},
		{"invalid bot id", "/api/v1/chat/bot-1", `{"senderId":"visitor-1","message":"Hi"}`, nil, http.StatusBadRequest},
		{"missing sender", "/api/v1/chat/" + botID, `{"message":"Hi"}`, nil, http.StatusBadRequest},
		{"empty message", "/api/v1/chat/" + botID, `{"senderId":"s","message":""}`, nil, http.StatusBadRequest},
		{"long message", "/api/v1/chat/" + botID, `{"senderId":"s","message":"` + strings.Repeat("x", 5001) + `"}`, nil, http.StatusBadRequest},
		{"unknown bot", "/api/v1/chat/" + botID, `{"senderId":"s","message":"Hi"}`, domain.NotFound("bot not found"), http.StatusNotFound},
		{"inactive bot", "/api/v1/chat/" + botID, `{"senderId":"s","message":"Hi"}`, domain.NewAppError(domain.CodeForbidden, "bot is not active", nil), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{err: tt.svcErr}
			w := serve(setupRouter(&mockConversationService{}, svc), http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if w.Body.String() != `{"reply":"hello","conversationId":"`+convID+`"}` {
					t.Errorf("body = %s", w.Body.String())
				}
				if svc.gotBotID != botID || svc.gotSender != "visitor-1" || svc.gotMessage != "Hi" {
					t.Errorf("service got %+v", svc)
				}
			}
		})
	}
}

func TestChatHandler_History(t *testing.T) {
	svc := &mockChatService{}
	r := setupRouter(&mockConversationService{}, svc)

	w := serve(r, http.MethodGet, "/api/v1/chat/history/"+botID+"?senderId=visitor-1", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if svc.gotSender != "visitor-1" || svc.gotBotID != botID {
		t.Errorf("service got %+v", svc)
	}

	w = serve(r, http.MethodGet, "/api/v1/chat/history/"+botID, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing senderId: status = %d", w.Code)
	}
	var resp pkg.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := resp.Error.Fields["senderId"]; !ok {
		t.Errorf("fields = %v", resp.Error.Fields)
	}
}

func TestConversationHandler(t *testing.T) {
	svc := &mockConversationService{}
	r := setupRouter(svc, &mockChatService{})

	if w := serve(r, http.MethodGet, "/api/v1/conversations?botId="+botID, ""); w.Code != http.StatusOK {
		t.Errorf("list status = %d", w.Code)
	}
	if svc.listBotID != botID {
		t.Errorf("botID = %q", svc.listBotID)
	}
	if w := serve(r, http.MethodGet, "/api/v1/conversations?botId=nope", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid botId: status = %d", w.Code)
	}

	w := serve(r, http.MethodGet, "/api/v1/conversations/"+convID, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"messages":[{`) {
		t.Errorf("get: status = %d body = %s", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodDelete, "/api/v1/conversations/"+convID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := serve(r, http.MethodDelete, "/api/v1/conversations/bulk", `{"ids":["`+convID+`","`+botID+`"]}`); w.Body.String() != `{"deleted":2}` {
		t.Errorf("bulk body = %s", w.Body.String())
	}
	if w := serve(r, http.MethodPost, "/api/v1/conversations", `{}`); w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST must not be routed, status = %d", w.Code)
	}

	svc.err = domain.NotFound("conversation not found")
	if w := serve(r, http.MethodGet, "/api/v1/conversations/"+convID, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
}
