package bot

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/genbot/internal/domain"
)

// Field limits shared by the request binding and the service checks.
const (
	maxNameLength           = 100
	maxSystemPromptLength   = 5000
	maxWelcomeMessageLength = 500
	maxModelLength          = 100
)

// botService implements domain.BotService.
type botService struct {
	repo domain.BotRepository
}

// NewBotService creates a new BotService with the given repository.
func NewBotService(repo domain.BotRepository) domain.BotService {
	return &botService{repo: repo}
}

// CreateBot validates input, applies defaults and persists the bot.
func (s *botService) CreateBot(ctx context.Context, in domain.CreateBotInput) (*domain.Bot, error) {
	bot := &domain.Bot{
		Name:           strings.TrimSpace(in.Name),
		SystemPrompt:   strings.TrimSpace(in.SystemPrompt),
		Model:          strings.TrimSpace(in.Model),
		WelcomeMessage: domain.DefaultBotWelcomeMessage,
		UserID:         in.UserID,
		IsActive:       true,
	}
	if bot.Model == "" {
		bot.Model = domain.DefaultBotModel
	}
	if in.WelcomeMessage != nil {
		bot.WelcomeMessage = strings.TrimSpace(*in.WelcomeMessage)
	}
	if in.IsActive != nil {
		bot.IsActive = *in.IsActive
	}

	if err := validate(bot); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *botService) GetBot(ctx context.Context, id string) (*domain.Bot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *botService) ListBots(ctx context.Context, q domain.ListQuery) (*domain.ListResult[domain.Bot], error) {
	return s.repo.List(ctx, q)
}

// UpdateBot applies the non-nil fields of in to the stored bot.
func (s *botService) UpdateBot(ctx context.Context, id string, in domain.UpdateBotInput) (*domain.Bot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		bot.Name = strings.TrimSpace(*in.Name)
	}
	if in.SystemPrompt != nil {
		bot.SystemPrompt = strings.TrimSpace(*in.SystemPrompt)
	}
	if in.Model != nil {
		bot.Model = strings.TrimSpace(*in.Model)
		if bot.Model == "" {
			bot.Model = domain.DefaultBotModel
		}
	}
	if in.WelcomeMessage != nil {
		bot.WelcomeMessage = strings.TrimSpace(*in.WelcomeMessage)
	}
	if in.IsActive != nil {
		bot.IsActive = *in.IsActive
	}

	if err := validate(bot); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// DeleteBot removes a bot and all data that belongs to it.
func (s *botService) DeleteBot(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *botService) BulkDeleteBots(ctx context.Context, ids []string) (*domain.BulkDeleteResult, error) {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &domain.BulkDeleteResult{Deleted: n}, nil
}

func validate(bot *domain.Bot) error {
	if err := requireLength("name", bot.Name, 1, maxNameLength); err != nil {
		return err
	}
	if err := requireLength("systemPrompt", bot.SystemPrompt, 1, maxSystemPromptLength); err != nil {
		return err
	}
	if err := requireLength("welcomeMessage", bot.WelcomeMessage, 0, maxWelcomeMessageLength); err != nil {
		return err
	}
	return requireLength("model", bot.Model, 1, maxModelLength)
}

func requireLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return domain.NewAppError(domain.CodeValidation, field+" is required", nil)
	}
	if n > max {
		return domain.NewAppError(domain.CodeValidation, field+" is too long", nil)
	}
	return nil
}
