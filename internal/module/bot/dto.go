package bot

import "github.com/simp-lee/genbot/internal/domain"

// CreateBotRequest represents the input for creating a bot.
type CreateBotRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=100"`
	SystemPrompt   string  `json:"systemPrompt" binding:"required,min=1,max=5000"`
	Model          string  `json:"model" binding:"omitempty,max=100"`
	WelcomeMessage *string `json:"welcomeMessage" binding:"omitempty,max=500"`
	IsActive       *bool   `json:"isActive"`
}

func (r CreateBotRequest) toInput(userID string) domain.CreateBotInput {
	return domain.CreateBotInput{
		Name:           r.Name,
		SystemPrompt:   r.SystemPrompt,
		Model:          r.Model,
		WelcomeMessage: r.WelcomeMessage,
		IsActive:       r.IsActive,
		UserID:         userID,
	}
}

// UpdateBotRequest represents a partial bot update.
type UpdateBotRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	SystemPrompt   *string `json:"systemPrompt" binding:"omitempty,min=1,max=5000"`
	Model          *string `json:"model" binding:"omitempty,max=100"`
	WelcomeMessage *string `json:"welcomeMessage" binding:"omitempty,max=500"`
	IsActive       *bool   `json:"isActive"`
}

func (r UpdateBotRequest) toInput() domain.UpdateBotInput {
	return domain.UpdateBotInput{
		Name:           r.Name,
		SystemPrompt:   r.SystemPrompt,
		Model:          r.Model,
		WelcomeMessage: r.WelcomeMessage,
		IsActive:       r.IsActive,
	}
}
