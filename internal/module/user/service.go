package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/genbot/internal/domain"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository) domain.UserService {
	return &userService{repo: repo}
}

// CreateUser validates input, hashes the password and persists the user.
// An empty role defaults to domain.RoleUser.
func (s *userService) CreateUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	if err := ValidateNewUser(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "user with this email already exists", err)
		}
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns one page of users.
func (s *userService) ListUsers(ctx context.Context, q domain.ListQuery) (*domain.ListResult[domain.User], error) {
	return s.repo.List(ctx, q)
}

// UpdateUser applies a partial update to the user's name and role.
func (s *userService) UpdateUser(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.NewAppError(domain.CodeValidation, "role must be admin or user", nil)
		}
		user.Role = *in.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user by ID.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// BulkDeleteUsers removes every listed user and reports how many existed.
func (s *userService) BulkDeleteUsers(ctx context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &domain.BulkDeleteResult{Deleted: n}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// ValidateNewUser checks the fields of a user about to be created. Name and
// email are expected to be trimmed already.
func ValidateNewUser(in domain.CreateUserInput) error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if in.Email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Name != "" || addr.Address != in.Email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	if len(in.Password) < 8 {
		return domain.NewAppError(domain.CodeValidation, "password must be at least 8 characters", nil)
	}
	if len(in.Password) > 72 {
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 characters", nil)
	}
	if !in.Role.Valid() {
		return domain.NewAppError(domain.CodeValidation, "role must be admin or user", nil)
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if n > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	return nil
}
