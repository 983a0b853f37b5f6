package middleware

import "github.com/gin-gonic/gin"

// Wire codes written by the middleware. They match the codes the handlers
// derive from domain errors.
const (
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeRateLimited  = "RATE_LIMITED"
	codeInternal     = "INTERNAL_ERROR"
)

// abortWithError stops the chain and writes the standard error body.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": GetRequestID(c),
		},
	})
}
