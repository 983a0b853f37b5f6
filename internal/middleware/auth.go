package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
)

const principalContextKey = "principal"

// TokenVerifier validates a bearer token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header. The verified
// principal is stored on the context for GetPrincipal and RequireRole.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "missing or malformed bearer token")
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			_ = c.Error(err)
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "invalid or expired token")
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireRole allows the request only when the authenticated principal has
// one of roles. It must run after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		if !slices.Contains(roles, p.Role) {
			abortWithError(c, http.StatusForbidden, codeForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal, or nil.
func GetPrincipal(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(principalContextKey); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}
