package lead

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const notFoundMessage = "lead not found"

var (
	searchColumns = []clause.Column{
		pkg.Column("name"),
		pkg.Column("email"),
		pkg.Column("phone"),
		pkg.Column("sender_id"),
	}
	sortColumns = map[string]clause.Column{
		"name":      pkg.Column("name"),
		"email":     pkg.Column("email"),
		"phone":     pkg.Column("phone"),
		"senderId":  pkg.Column("sender_id"),
		"createdAt": pkg.Column("created_at"),
	}
)

// leadRepository implements domain.LeadRepository using GORM.
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository backed by the given GORM database.
func NewLeadRepository(db *gorm.DB) domain.LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &lead, nil
}

// FindByBotAndSender returns the oldest lead a sender left with a bot.
func (r *leadRepository) FindByBotAndSender(ctx context.Context, botID, senderID string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND sender_id = ?", botID, senderID).
		Order("created_at ASC").Order("id ASC").
		First(&lead).Error
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &lead, nil
}

// List returns one page of leads, scoped to botID when it is set.
func (r *leadRepository) List(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Lead], error) {
	cfg := pkg.ListConfig{
		SearchColumns: searchColumns,
		SortColumns:   sortColumns,
		DefaultSort:   "createdAt",
	}
	if botID != "" {
		cfg.Scope = pkg.Eq("bot_id", botID)
	}

	result, err := pkg.PaginatedList[domain.Lead](ctx, r.db, q, cfg)
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return result, nil
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	if err := r.db.WithContext(ctx).Save(lead).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lead{})
	if result.Error != nil {
		return pkg.MapDBError(result.Error, notFoundMessage)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound(notFoundMessage)
	}
	return nil
}

func (r *leadRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Lead{})
	if result.Error != nil {
		return 0, pkg.MapDBError(result.Error, notFoundMessage)
	}
	return result.RowsAffected, nil
}
