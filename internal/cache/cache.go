// Package cache keeps the recent turns of each conversation close at hand so
// that a chat request does not have to reload them from the database.
package cache

import (
	"context"

	"github.com/simp-lee/genbot/internal/domain"
)

// HistoryStore caches the chat history of conversations.
//
// Get reports a miss with ok == false and a nil error. Set stores at most the
// store's configured number of most recent turns.
type HistoryStore interface {
	Get(ctx context.Context, conversationID string) (turns []domain.ChatTurn, ok bool, err error)
	Set(ctx context.Context, conversationID string, turns []domain.ChatTurn) error
	Delete(ctx context.Context, conversationIDs ...string) error
	Ping(ctx context.Context) error
}

// HistoryKey returns the cache key of a conversation's history.
func HistoryKey(conversationID string) string {
	return "conv:" + conversationID + ":messages"
}

// lastN returns the trailing max entries of turns. A non-positive max keeps
// everything.
func lastN(turns []domain.ChatTurn, max int) []domain.ChatTurn {
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
