package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simp-lee/genbot/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with every table migrated.
// The pool is pinned to one connection because each in-memory connection is
// its own database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, repo domain.UserRepository, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create %s: %v", email, err)
	}
	return u
}

func TestCreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := createUser(t, repo, "Alice", "alice@example.com", domain.RoleAdmin)
	if user.ID == "" {
		t.Fatal("expected ID to be assigned on create")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Alice" || got.Role != domain.RoleAdmin {
		t.Errorf("got %+v; want Alice/admin", got)
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetByEmail ID = %q; want %q", byEmail.ID, user.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "0192f1b4-0000-7000-8000-000000000000"); !domain.IsNotFound(err) {
		t.Errorf("GetByID: expected not found, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "ghost@example.com"); !domain.IsNotFound(err) {
		t.Errorf("GetByEmail: expected not found, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	createUser(t, repo, "Alice", "dup@example.com", domain.RoleUser)

	err := repo.Create(context.Background(), &domain.User{Name: "Bob", Email: "dup@example.com", PasswordHash: "x", Role: domain.RoleUser})
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected already exists, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "Alice", "alice@example.com", domain.RoleUser)

	user.Name = "Alice Updated"
	user.Role = domain.RoleAdmin
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.GetByID(ctx, user.ID)
	if got.Name != "Alice Updated" || got.Role != domain.RoleAdmin {
		t.Errorf("got %+v after update", got)
	}
}

func TestDelete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "Alice", "alice@example.com", domain.RoleUser)

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, user.ID); !domain.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, user.ID); !domain.IsNotFound(err) {
		t.Errorf("second Delete: expected not found, got %v", err)
	}
}

func TestDelete_OwnerOfBots(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	owner := createUser(t, repo, "Owner", "owner@example.com", domain.RoleUser)
	other := createUser(t, repo, "Other", "other@example.com", domain.RoleUser)

	if err := db.Create(&domain.Bot{Name: "Helper", SystemPrompt: "be nice", UserID: owner.ID, IsActive: true}).Error; err != nil {
		t.Fatalf("create bot: %v", err)
	}

	if err := repo.Delete(ctx, owner.ID); !domain.IsAlreadyExists(err) {
		t.Errorf("Delete owner: expected conflict, got %v", err)
	}
	if _, err := repo.DeleteMany(ctx, []string{owner.ID, other.ID}); !domain.IsAlreadyExists(err) {
		t.Errorf("DeleteMany with owner: expected conflict, got %v", err)
	}
	// The batch is rejected as a whole.
	if _, err := repo.GetByID(ctx, other.ID); err != nil {
		t.Errorf("other user should survive rejected batch: %v", err)
	}
}

func TestDeleteMany_CountsExistingRows(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	a := createUser(t, repo, "A", "a@example.com", domain.RoleUser)
	b := createUser(t, repo, "B", "b@example.com", domain.RoleUser)
	createUser(t, repo, "C", "c@example.com", domain.RoleUser)

	n, err := repo.DeleteMany(ctx, []string{a.ID, b.ID, "0192f1b4-0000-7000-8000-000000000000"})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d; want 2", n)
	}

	result, err := repo.List(ctx, domain.ListQuery{Page: 1, Limit: 20, Order: domain.OrderDesc})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Meta.Total != 1 || result.Data[0].Name != "C" {
		t.Errorf("remaining users = %+v", result.Data)
	}
}

func TestList(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	createUser(t, repo, "Alice Smith", "alice@example.com", domain.RoleAdmin)
	createUser(t, repo, "Bob Jones", "bob@corp.test", domain.RoleUser)
	createUser(t, repo, "Carol Smith", "carol@example.com", domain.RoleUser)
	for i := 0; i < 22; i++ {
		createUser(t, repo, fmt.Sprintf("Member %02d", i), fmt.Sprintf("member%02d@example.com", i), domain.RoleUser)
	}

	tests := []struct {
		name      string
		q         domain.ListQuery
		wantTotal int64
		wantLen   int
		wantFirst string
	}{
		{
			name:      "first page",
			q:         domain.ListQuery{Page: 1, Limit: 10, Sort: "name", Order: domain.OrderAsc},
			wantTotal: 25, wantLen: 10, wantFirst: "Alice Smith",
		},
		{
			name:      "last partial page",
			q:         domain.ListQuery{Page: 3, Limit: 10, Sort: "name", Order: domain.OrderAsc},
			wantTotal: 25, wantLen: 5, wantFirst: "Member 17",
		},
		{
			name:      "search covers email",
			q:         domain.ListQuery{Page: 1, Limit: 10, Search: "CORP", Order: domain.OrderDesc},
			wantTotal: 1, wantLen: 1, wantFirst: "Bob Jones",
		},
		{
			name:      "search covers name",
			q:         domain.ListQuery{Page: 1, Limit: 10, Search: "smith", Sort: "name", Order: domain.OrderDesc},
			wantTotal: 2, wantLen: 2, wantFirst: "Carol Smith",
		},
		{
			name:      "filter by role",
			q:         domain.ListQuery{Page: 1, Limit: 10, FilterValue: "admin", FilterFields: "role", Order: domain.OrderDesc},
			wantTotal: 1, wantLen: 1, wantFirst: "Alice Smith",
		},
		{
			name:      "non-whitelisted filter field is ignored",
			q:         domain.ListQuery{Page: 1, Limit: 10, FilterValue: "hash", FilterFields: "passwordHash", Order: domain.OrderDesc},
			wantTotal: 25, wantLen: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if result.Meta.Total != tt.wantTotal {
				t.Errorf("Total = %d; want %d", result.Meta.Total, tt.wantTotal)
			}
			if len(result.Data) != tt.wantLen {
				t.Fatalf("len(Data) = %d; want %d", len(result.Data), tt.wantLen)
			}
			if tt.wantFirst != "" && result.Data[0].Name != tt.wantFirst {
				t.Errorf("first = %q; want %q", result.Data[0].Name, tt.wantFirst)
			}
		})
	}
}
