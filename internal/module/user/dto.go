package user

import "github.com/simp-lee/genbot/internal/domain"

// CreateUserRequest represents the input for creating a user.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

func (r CreateUserRequest) toInput() domain.CreateUserInput {
	return domain.CreateUserInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     domain.Role(r.Role),
	}
}

// UpdateUserRequest represents a partial user update. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=admin user"`
}

func (r UpdateUserRequest) toInput() domain.UpdateUserInput {
	in := domain.UpdateUserInput{Name: r.Name}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		in.Role = &role
	}
	return in
}
