package bot

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const notFoundMessage = "bot not found"

var listConfig = pkg.ListConfig{
	SearchColumns: []clause.Column{pkg.Column("name")},
	SortColumns: map[string]clause.Column{
		"name":      pkg.Column("name"),
		"createdAt": pkg.Column("created_at"),
		"updatedAt": pkg.Column("updated_at"),
	},
	DefaultSort: "createdAt",
}

// botRepository implements domain.BotRepository using GORM.
type botRepository struct {
	db *gorm.DB
}

// NewBotRepository creates a new BotRepository backed by the given GORM database.
func NewBotRepository(db *gorm.DB) domain.BotRepository {
	return &botRepository{db: db}
}

func (r *botRepository) Create(ctx context.Context, bot *domain.Bot) error {
	if err := r.db.WithContext(ctx).Create(bot).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *botRepository) GetByID(ctx context.Context, id string) (*domain.Bot, error) {
	var bot domain.Bot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bot).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &bot, nil
}

func (r *botRepository) List(ctx context.Context, q domain.ListQuery) (*domain.ListResult[domain.Bot], error) {
	result, err := pkg.PaginatedList[domain.Bot](ctx, r.db, q, listConfig)
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return result, nil
}

func (r *botRepository) Update(ctx context.Context, bot *domain.Bot) error {
	if err := r.db.WithContext(ctx).Save(bot).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

// Delete removes the bot and everything that belongs to it in one transaction.
func (r *botRepository) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(notFoundMessage)
	}
	return nil
}

// DeleteMany removes the given bots with their documents, leads,
// conversations and messages. It returns the number of bots deleted.
func (r *botRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		convs := tx.Model(&domain.Conversation{}).Select("id").Where("bot_id IN ?", ids)
		if err := tx.Where("conversation_id IN (?)", convs).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		for _, child := range []any{&domain.Conversation{}, &domain.Lead{}, &domain.Document{}} {
			if err := tx.Where("bot_id IN ?", ids).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id IN ?", ids).Delete(&domain.Bot{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, pkg.MapDBError(err, notFoundMessage)
	}
	return deleted, nil
}
