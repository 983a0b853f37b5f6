package domain

import "context"

// Role is the authorization role of a user account.
type Role string

// Supported roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account that can sign in to the admin API.
type User struct {
	BaseModel
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string `gorm:"size:100;not null" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:user" json:"role"`
}

// Principal is the authenticated identity carried by a verified token.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// CreateUserInput holds the fields accepted when creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UpdateUserInput holds a partial user update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name *string
	Role *Role
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q ListQuery) (*ListResult[User], error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, q ListQuery) (*ListResult[User], error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	BulkDeleteUsers(ctx context.Context, ids []string) (*BulkDeleteResult, error)
}
