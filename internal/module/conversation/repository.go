package conversation

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const notFoundMessage = "conversation not found"

var (
	searchColumns = []clause.Column{pkg.Column("title"), pkg.Column("sender_id")}
	sortColumns   = map[string]clause.Column{
		"title":     pkg.Column("title"),
		"senderId":  pkg.Column("sender_id"),
		"createdAt": pkg.Column("created_at"),
		"updatedAt": pkg.Column("updated_at"),
	}
)

// conversationRepository implements domain.ConversationRepository using GORM.
type conversationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewConversationRepository creates a new ConversationRepository backed by the given GORM database.
func NewConversationRepository(db *gorm.DB) domain.ConversationRepository {
	return &conversationRepository{db: db, now: time.Now}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	if err := r.db.WithContext(ctx).Omit("Messages").Create(conv).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &conv, nil
}

func (r *conversationRepository) GetWithMessages(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	if conv.Messages == nil {
		conv.Messages = []domain.Message{}
	}
	return &conv, nil
}

// FindByBotAndSender returns the sender's conversation with the bot. Should
// more than one exist, the oldest wins.
func (r *conversationRepository) FindByBotAndSender(ctx context.Context, botID, senderID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND sender_id = ?", botID, senderID).
		Order("created_at ASC").Order("id ASC").
		First(&conv).Error
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &conv, nil
}

// List returns one page of conversations, scoped to botID when it is set.
// Messages are not loaded.
func (r *conversationRepository) List(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Conversation], error) {
	cfg := pkg.ListConfig{
		SearchColumns: searchColumns,
		SortColumns:   sortColumns,
		DefaultSort:   "createdAt",
	}
	if botID != "" {
		cfg.Scope = pkg.Eq("bot_id", botID)
	}

	result, err := pkg.PaginatedList[domain.Conversation](ctx, r.db, q, cfg)
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return result, nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	msgs := []domain.Message{}
	tx := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&msgs).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return msgs, nil
}

func (r *conversationRepository) AppendMessages(ctx context.Context, conversationID string, msgs []domain.Message) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", r.now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFound(notFoundMessage)
		}
		if len(msgs) == 0 {
			return nil
		}
		for i := range msgs {
			msgs[i].ConversationID = conversationID
		}
		return tx.Create(&msgs).Error
	})
	if err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(notFoundMessage)
	}
	return nil
}

// DeleteMany removes the conversations and their messages and reports how
// many conversations existed.
func (r *conversationRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id IN ?", ids).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&domain.Conversation{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, pkg.MapDBError(err, notFoundMessage)
	}
	return deleted, nil
}
