package conversation

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/genbot/internal/cache"
	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/llm"
)

const (
	// DefaultHistoryLimit is how many turns are handed to the model when no
	// limit is configured.
	DefaultHistoryLimit = 20

	titleLength       = 50
	maxMessageLength  = 5000
	maxSenderIDLength = 255
)

// ChatDeps holds the collaborators of the chat service.
type ChatDeps struct {
	Conversations domain.ConversationRepository
	Bots          domain.BotRepository
	Documents     domain.DocumentRepository
	History       cache.HistoryStore
	Generator     llm.Generator
	// HistoryLimit caps the turns sent to the model and kept in the cache.
	HistoryLimit int
	Logger       *slog.Logger
}

// chatService implements domain.ChatService.
type chatService struct {
	convs   domain.ConversationRepository
	bots    domain.BotRepository
	docs    domain.DocumentRepository
	history cache.HistoryStore
	gen     llm.Generator
	limit   int
	logger  *slog.Logger
}

// NewChatService creates a new ChatService. It panics when a repository or
// the generator is missing; History may be nil to always read from the
// database.
func NewChatService(deps ChatDeps) domain.ChatService {
	if deps.Conversations == nil || deps.Bots == nil || deps.Documents == nil || deps.Generator == nil {
		panic("conversation.NewChatService: missing dependency")
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = DefaultHistoryLimit
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &chatService{
		convs:   deps.Conversations,
		bots:    deps.Bots,
		docs:    deps.Documents,
		history: deps.History,
		gen:     deps.Generator,
		limit:   deps.HistoryLimit,
		logger:  deps.Logger,
	}
}

// Chat sends message from senderID to the bot and returns the reply. The
// sender's conversation is created on first contact. Both turns are stored
// only after the model has answered.
func (s *chatService) Chat(ctx context.Context, botID, senderID, message string) (*domain.ChatReply, error) {
	senderID = strings.TrimSpace(senderID)
	if err := validateChat(senderID, message); err != nil {
		return nil, err
	}

	bot, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		return nil, err
	}
	if !bot.IsActive {
		return nil, domain.NewAppError(domain.CodeForbidden, "bot is not active", nil)
	}

	conv, err := s.findOrCreate(ctx, botID, senderID, message)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByBot(ctx, botID)
	if err != nil {
		return nil, err
	}

	reply, err := s.gen.Generate(ctx, llm.Request{
		Model:             bot.Model,
		SystemInstruction: SystemInstruction(bot.SystemPrompt, docs),
		History:           history,
		Message:           message,
	})
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate reply", err)
	}

	err = s.convs.AppendMessages(ctx, conv.ID, []domain.Message{
		{Role: domain.MessageRoleUser, Content: message},
		{Role: domain.MessageRoleAssistant, Content: reply},
	})
	if err != nil {
		return nil, err
	}

	history = append(history,
		domain.ChatTurn{Role: domain.TurnRoleUser, Content: message},
		domain.ChatTurn{Role: domain.TurnRoleModel, Content: reply},
	)
	s.storeHistory(ctx, conv.ID, history)

	return &domain.ChatReply{Reply: reply, ConversationID: conv.ID}, nil
}

// History returns every message of the sender's conversation with the bot,
// oldest first. It is empty when the sender never chatted with the bot.
func (s *chatService) History(ctx context.Context, botID, senderID string) ([]domain.Message, error) {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "senderId is required", nil)
	}

	conv, err := s.convs.FindByBotAndSender(ctx, botID, senderID)
	if domain.IsNotFound(err) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.convs.ListMessages(ctx, conv.ID, 0)
}

func (s *chatService) findOrCreate(ctx context.Context, botID, senderID, message string) (*domain.Conversation, error) {
	conv, err := s.convs.FindByBotAndSender(ctx, botID, senderID)
	if err == nil {
		return conv, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	title := truncate(message, titleLength)
	conv = &domain.Conversation{BotID: botID, SenderID: senderID, Title: &title}
	if err := s.convs.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// loadHistory reads the cached turns of a conversation and falls back to the
// database when the cache misses or fails.
func (s *chatService) loadHistory(ctx context.Context, conversationID string) ([]domain.ChatTurn, error) {
	if s.history != nil {
		turns, ok, err := s.history.Get(ctx, conversationID)
		if err != nil {
			s.logger.WarnContext(ctx, "chat history cache read failed",
				slog.String("conversation_id", conversationID),
				slog.Any("error", err),
			)
		}
		if err == nil && ok {
			return turns, nil
		}
	}

	msgs, err := s.convs.ListMessages(ctx, conversationID, s.limit)
	if err != nil {
		return nil, err
	}
	return Turns(msgs), nil
}

func (s *chatService) storeHistory(ctx context.Context, conversationID string, turns []domain.ChatTurn) {
	if s.history == nil {
		return
	}
	if len(turns) > s.limit {
		turns = turns[len(turns)-s.limit:]
	}
	if err := s.history.Set(ctx, conversationID, turns); err != nil {
		s.logger.WarnContext(ctx, "chat history cache write failed",
			slog.String("conversation_id", conversationID),
			slog.Any("error", err),
		)
	}
}

// SystemInstruction appends the bot's documents to its system prompt as a
// knowledge base section.
func SystemInstruction(systemPrompt string, docs []domain.Document) string {
	if len(docs) == 0 {
		return systemPrompt
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = "# " + d.Title + "\n\n" + d.Content
	}
	return systemPrompt + "\n\nKnowledge base:\n" + strings.Join(parts, "\n---\n")
}

// Turns converts stored messages into model history. System messages are not
// part of the dialogue and are skipped.
func Turns(msgs []domain.Message) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.MessageRoleUser:
			turns = append(turns, domain.ChatTurn{Role: domain.TurnRoleUser, Content: m.Content})
		case domain.MessageRoleAssistant:
			turns = append(turns, domain.ChatTurn{Role: domain.TurnRoleModel, Content: m.Content})
		}
	}
	return turns
}

func validateChat(senderID, message string) error {
	switch {
	case senderID == "":
		return domain.NewAppError(domain.CodeValidation, "senderId is required", nil)
	case utf8.RuneCountInString(senderID) > maxSenderIDLength:
		return domain.NewAppError(domain.CodeValidation, "senderId is too long", nil)
	case strings.TrimSpace(message) == "":
		return domain.NewAppError(domain.CodeValidation, "message is required", nil)
	case utf8.RuneCountInString(message) > maxMessageLength:
		return domain.NewAppError(domain.CodeValidation, "message must not exceed 5000 characters", nil)
	}
	return nil
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
