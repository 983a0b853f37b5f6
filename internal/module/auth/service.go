package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/module/user"
)

// errInvalidCredentials is returned for both an unknown email and a wrong
// password.
var errInvalidCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", nil)

// TokenIssuer signs access tokens for users.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// authService implements Service.
type authService struct {
	tokens    TokenIssuer
	userRepo  domain.UserRepository
	dummyHash []byte
}

// NewService creates a new auth Service.
func NewService(tokens TokenIssuer, userRepo domain.UserRepository) Service {
	// Compared against on unknown emails so both failure paths cost one bcrypt run.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("genbot-dummy-password"), user.PasswordCost)
	return &authService{tokens: tokens, userRepo: userRepo, dummyHash: dummy}
}

// Register creates a user with the default role and signs them in.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	in := domain.CreateUserInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     domain.RoleUser,
	}
	if err := user.ValidateNewUser(in); err != nil {
		return nil, err
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "user with this email already exists", err)
		}
		return nil, err
	}

	return s.issue(u)
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issue(u)
}

// Me returns the account behind an authenticated token. A token whose user
// has since been deleted no longer authenticates.
func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) issue(u *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
