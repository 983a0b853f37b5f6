package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering business module.
// public is open to anyone, protected requires a valid token and admin
// additionally requires the admin role. When auth is disabled all three
// groups are open.
type Module interface {
	RegisterRoutes(public, protected, admin *gin.RouterGroup)
}
