// Package llm talks to the language model that writes bot replies.
package llm

import (
	"context"

	"github.com/simp-lee/genbot/internal/domain"
)

// Request is one generation call: a system instruction, the prior turns of
// the conversation and the new user message.
type Request struct {
	Model             string
	SystemInstruction string
	History           []domain.ChatTurn
	Message           string
}

// Generator produces the model's reply to a Request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Echo is a Generator that answers with the user's own message. It lets the
// server run locally without an API key.
type Echo struct{}

// Generate returns req.Message prefixed with the model name.
func (Echo) Generate(_ context.Context, req Request) (string, error) {
	return "[" + req.Model + "] " + req.Message, nil
}
