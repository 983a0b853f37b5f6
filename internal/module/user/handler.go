package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc domain.UserService
}

// NewUserHandler creates a new UserHandler with the given service.
func NewUserHandler(svc domain.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, user)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	var q domain.ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}

	result, err := h.svc.ListUsers(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PATCH /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, user)
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pkg.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.NoContent(c)
}

// BulkDelete handles DELETE /api/v1/users/bulk.
func (h *UserHandler) BulkDelete(c *gin.Context) {
	var req pkg.BulkDeleteRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.BulkDeleteUsers(c.Request.Context(), req.CanonicalIDs())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, result)
}
