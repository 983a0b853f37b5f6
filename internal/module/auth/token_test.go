package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/genbot/internal/domain"
)

const testSecret = "test-secret-with-enough-length-0123456789"

func testUser() *domain.User {
	u := &domain.User{Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin}
	u.ID = "0192f1b4-7c1e-7a10-8d5e-2b3c4d5e6f70"
	return u
}

func newTestManager(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	m.now = func() time.Time { return now }
	return m
}

func TestNewTokenManager_Errors(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewTokenManager(testSecret, 0); err == nil {
		t.Error("expected error for zero expiry")
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)

	token, expiresAt, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v; want %v", expiresAt, now.Add(time.Hour))
	}

	p, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != testUser().ID || p.Email != "alice@example.com" || p.Role != domain.RoleAdmin {
		t.Errorf("principal = %+v", p)
	}
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)
	valid, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sign := func(method jwt.SigningMethod, key any, claims Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	baseClaims := func() Claims {
		return Claims{
			Email: "alice@example.com",
			Role:  domain.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	noSubject := baseClaims()
	noSubject.Subject = ""
	badRole := baseClaims()
	badRole.Role = "root"
	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil
	otherIssuer := baseClaims()
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"tampered signature", valid[:len(valid)-2] + "xx"},
		{"other secret", sign(jwt.SigningMethodHS256, []byte("another-secret-another-secret-123"), baseClaims())},
		{"other hmac algorithm", sign(jwt.SigningMethodHS512, []byte(testSecret), baseClaims())},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims())},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
		{"unknown role", sign(jwt.SigningMethodHS256, []byte(testSecret), badRole)},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"other issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), otherIssuer)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); err == nil {
				t.Error("Verify() expected error, got nil")
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		later := newTestManager(t, now.Add(2*time.Hour))
		_, err := later.Verify(valid)
		if err == nil || !strings.Contains(err.Error(), "expired") {
			t.Errorf("Verify() error = %v; want expired", err)
		}
	})
}
