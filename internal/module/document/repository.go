package document

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const notFoundMessage = "document not found"

var sortColumns = map[string]clause.Column{
	"title":     pkg.Column("title"),
	"createdAt": pkg.Column("created_at"),
	"updatedAt": pkg.Column("updated_at"),
}

// documentRepository implements domain.DocumentRepository using GORM.
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository backed by the given GORM database.
func NewDocumentRepository(db *gorm.DB) domain.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &doc, nil
}

// List returns one page of documents, scoped to botID when it is set.
func (r *documentRepository) List(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Document], error) {
	cfg := pkg.ListConfig{
		SearchColumns: []clause.Column{pkg.Column("title")},
		SortColumns:   sortColumns,
		DefaultSort:   "createdAt",
	}
	if botID != "" {
		cfg.Scope = pkg.Eq("bot_id", botID)
	}

	result, err := pkg.PaginatedList[domain.Document](ctx, r.db, q, cfg)
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return result, nil
}

// ListByBot returns every document of a bot, oldest first.
func (r *documentRepository) ListByBot(ctx context.Context, botID string) ([]domain.Document, error) {
	docs := []domain.Document{}
	err := r.db.WithContext(ctx).
		Where("bot_id = ?", botID).
		Order("created_at ASC").Order("id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return docs, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *domain.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Document{})
	if result.Error != nil {
		return pkg.MapDBError(result.Error, notFoundMessage)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound(notFoundMessage)
	}
	return nil
}

func (r *documentRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Document{})
	if result.Error != nil {
		return 0, pkg.MapDBError(result.Error, notFoundMessage)
	}
	return result.RowsAffected, nil
}
