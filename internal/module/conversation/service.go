package conversation

import (
	"context"
	"log/slog"

	"github.com/simp-lee/genbot/internal/cache"
	"github.com/simp-lee/genbot/internal/domain"
)

// conversationService implements domain.ConversationService.
type conversationService struct {
	repo    domain.ConversationRepository
	history cache.HistoryStore
	logger  *slog.Logger
}

// NewConversationService creates a new ConversationService. Cached histories
// of deleted conversations are evicted from history.
func NewConversationService(repo domain.ConversationRepository, history cache.HistoryStore, logger *slog.Logger) domain.ConversationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &conversationService{repo: repo, history: history, logger: logger}
}

func (s *conversationService) ListConversations(ctx context.Context, q domain.ListQuery, botID string) (*domain.ListResult[domain.Conversation], error) {
	return s.repo.List(ctx, q, botID)
}

// GetConversation returns the conversation with all of its messages.
func (s *conversationService) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.repo.GetWithMessages(ctx, id)
}

func (s *conversationService) DeleteConversation(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *conversationService) BulkDeleteConversations(ctx context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, ids...)
	return &domain.BulkDeleteResult{Deleted: n}, nil
}

func (s *conversationService) evict(ctx context.Context, ids ...string) {
	if s.history == nil {
		return
	}
	if err := s.history.Delete(ctx, ids...); err != nil {
		s.logger.WarnContext(ctx, "failed to evict cached chat history",
			slog.Int("conversations", len(ids)),
			slog.Any("error", err),
		)
	}
}
