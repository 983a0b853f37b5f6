package pkg

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/domain"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.CodeNotFound, "bot not found"},
		{"wrapped not found", fmt.Errorf("first: %w", gorm.ErrRecordNotFound), domain.CodeNotFound, "bot not found"},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, domain.CodeAlreadyExists, "already exists"},
		{"sqlite unique message", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), domain.CodeAlreadyExists, "already exists"},
		{"postgres duplicate message", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), domain.CodeAlreadyExists, "already exists"},
		{"anything else", errors.New("connection refused"), domain.CodeInternal, "database error"},
		{"app error passes through", domain.NewAppError(domain.CodeForbidden, "nope", nil), domain.CodeForbidden, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err, "bot not found")
			var appErr *domain.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("MapDBError() = %v; want *domain.AppError", err)
			}
			if appErr.Code != tt.wantCode || appErr.Message != tt.wantMsg {
				t.Errorf("got code=%d msg=%q; want code=%d msg=%q", appErr.Code, appErr.Message, tt.wantCode, tt.wantMsg)
			}
		})
	}

	if MapDBError(nil, "x") != nil {
		t.Error("MapDBError(nil) should be nil")
	}
}
