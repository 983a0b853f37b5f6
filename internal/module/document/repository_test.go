package document

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simp-lee/genbot/internal/domain"
)

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

func seedBot(t *testing.T, db *gorm.DB, name string) *domain.Bot {
	t.Helper()
	b := &domain.Bot{Name: name, SystemPrompt: "prompt", Model: domain.DefaultBotModel, IsActive: true}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed bot: %v", err)
	}
	return b
}

func seedDoc(t *testing.T, repo domain.DocumentRepository, botID, title string) *domain.Document {
	t.Helper()
	d := &domain.Document{BotID: botID, Title: title, Content: "Content of " + title}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("Create %s: %v", title, err)
	}
	return d
}

func TestDocumentRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	b := seedBot(t, db, "Helper")

	doc := seedDoc(t, repo, b.ID, "Pricing")
	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Pricing" || got.BotID != b.ID {
		t.Errorf("got %+v", got)
	}

	got.Content = "New pricing"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := repo.GetByID(ctx, doc.ID)
	if again.Content != "New pricing" {
		t.Errorf("Content = %q", again.Content)
	}

	if err := repo.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); !domain.IsNotFound(err) {
		t.Errorf("after delete: %v", err)
	}
	if err := repo.Delete(ctx, doc.ID); !domain.IsNotFound(err) {
		t.Errorf("second delete: %v", err)
	}
}

func TestDocumentRepository_ListScopedByBot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	a := seedBot(t, db, "A")
	b := seedBot(t, db, "B")

	seedDoc(t, repo, a.ID, "Shipping policy")
	seedDoc(t, repo, a.ID, "Returns policy")
	seedDoc(t, repo, a.ID, "Opening hours")
	seedDoc(t, repo, b.ID, "Shipping rates")

	tests := []struct {
		name      string
		q         domain.ListQuery
		botID     string
		wantTotal int64
	}{
		{"all bots", domain.ListQuery{Page: 1, Limit: 20}, "", 4},
		{"one bot", domain.ListQuery{Page: 1, Limit: 20}, a.ID, 3},
		{"search across bots", domain.ListQuery{Page: 1, Limit: 20, Search: "shipping"}, "", 2},
		{"search within bot", domain.ListQuery{Page: 1, Limit: 20, Search: "shipping"}, b.ID, 1},
		{"content is not searched", domain.ListQuery{Page: 1, Limit: 20, Search: "Content of"}, "", 0},
		{"filter by title", domain.ListQuery{Page: 1, Limit: 20, FilterValue: "policy", FilterFields: "title"}, a.ID, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.q, tt.botID)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if result.Meta.Total != tt.wantTotal || int64(len(result.Data)) != tt.wantTotal {
				t.Errorf("total = %d, len = %d; want %d", result.Meta.Total, len(result.Data), tt.wantTotal)
			}
			for _, d := range result.Data {
				if tt.botID != "" && d.BotID != tt.botID {
					t.Errorf("document %q escaped the bot scope", d.Title)
				}
			}
		})
	}
}

func TestDocumentRepository_ListByBot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	a := seedBot(t, db, "A")
	b := seedBot(t, db, "B")
	first := seedDoc(t, repo, a.ID, "First")
	second := seedDoc(t, repo, a.ID, "Second")
	seedDoc(t, repo, b.ID, "Other")

	docs, err := repo.ListByBot(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListByBot: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != first.ID || docs[1].ID != second.ID {
		t.Errorf("docs = %+v; want First then Second", docs)
	}

	none, err := repo.ListByBot(context.Background(), "0192f1b4-0000-7000-8000-000000000000")
	if err != nil {
		t.Fatalf("ListByBot: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestDocumentRepository_DeleteMany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	b := seedBot(t, db, "A")
	d1 := seedDoc(t, repo, b.ID, "One")
	d2 := seedDoc(t, repo, b.ID, "Two")

	n, err := repo.DeleteMany(context.Background(), []string{d1.ID, d2.ID, d1.ID})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d; want 2", n)
	}
}
