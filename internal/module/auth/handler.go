package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/middleware"
	"github.com/simp-lee/genbot/internal/pkg"
)

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, result)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	u, err := h.svc.Me(c.Request.Context(), principal.UserID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, u)
}
