package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		attrs := logger.FromContext(c.Request.Context())
		c.String(http.StatusOK, findAttrValue(attrs, "request_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func doRequestID(r *gin.Engine, path, upstream string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if upstream != "" {
		req.Header.Set(requestIDHeader, upstream)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	w := doRequestID(setupRequestIDRouter(RequestIDConfig{}), "/test", "")

	body := w.Body.String()
	id, err := uuid.Parse(body)
	if err != nil {
		t.Fatalf("request id %q is not a UUID: %v", body, err)
	}
	if id.Version() != 7 {
		t.Errorf("expected UUIDv7, got version %d", id.Version())
	}
	if header := w.Header().Get(requestIDHeader); header != body {
		t.Errorf("response header %q = %q; want %q", requestIDHeader, header, body)
	}
}

func TestRequestID_UpstreamHandling(t *testing.T) {
	tests := []struct {
		name      string
		trust     bool
		upstream  string
		wantReuse bool
	}{
		{"untrusted upstream is replaced", false, "upstream-id-123", false},
		{"trusted upstream is reused", true, "upstream-id-123", true},
		{"64 chars is reused", true, strings.Repeat("a", 64), true},
		{"65 chars is replaced", true, strings.Repeat("a", 65), false},
		{"underscore is replaced", true, "bad_id", false},
		{"header injection is replaced", true, "id\r\nSet-Cookie: x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequestID(setupRequestIDRouter(RequestIDConfig{TrustUpstream: tt.trust}), "/test", tt.upstream)

			body := w.Body.String()
			if tt.wantReuse {
				if body != tt.upstream {
					t.Errorf("request id = %q; want upstream %q", body, tt.upstream)
				}
				return
			}
			if body == tt.upstream {
				t.Fatal("expected upstream id to be replaced")
			}
			if _, err := uuid.Parse(body); err != nil {
				t.Errorf("replacement %q is not a UUID", body)
			}
		})
	}
}

func TestRequestID_StoredInGoContext(t *testing.T) {
	w := doRequestID(setupRequestIDRouter(RequestIDConfig{TrustUpstream: true}), "/ctx", "ctx-test-456")
	if body := w.Body.String(); body != "ctx-test-456" {
		t.Errorf("expected request ID in context %q, got %q", "ctx-test-456", body)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := doRequestID(r, "/test", "").Body.String()
		if ids[id] {
			t.Fatalf("duplicate request ID generated: %q", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	r := gin.New()
	r.GET("/no-id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	if body := doRequestID(r, "/no-id", "").Body.String(); body != "" {
		t.Errorf("expected empty request ID, got %q", body)
	}
}
