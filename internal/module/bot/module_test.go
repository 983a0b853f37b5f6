package bot

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBotModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(&BotHandler{}).RegisterRoutes(r.Group("/public"), r.Group("/protected"), r.Group("/admin"))

	expected := map[string]bool{
		http.MethodGet + ":/admin/bots":        true,
		http.MethodPost + ":/admin/bots":       true,
		http.MethodDelete + ":/admin/bots/bulk": true,
		http.MethodGet + ":/admin/bots/:id":    true,
		http.MethodPatch + ":/admin/bots/:id":  true,
		http.MethodDelete + ":/admin/bots/:id": true,
	}
	routes := r.Routes()
	if len(routes) != len(expected) {
		t.Errorf("registered %d routes; want %d", len(routes), len(expected))
	}
	for _, ri := range routes {
		if !expected[ri.Method+":"+ri.Path] {
			t.Errorf("unexpected route %s %s", ri.Method, ri.Path)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
