package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simp-lee/genbot/internal/domain"
)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a go-redis client and checks it with PING.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// RedisHistory stores each conversation's history as one JSON string with a
// TTL, under HistoryKey.
type RedisHistory struct {
	client redis.UniversalClient
	ttl    time.Duration
	max    int
}

// NewRedisHistory returns a HistoryStore backed by client. Entries expire
// after ttl and hold at most max turns.
func NewRedisHistory(client redis.UniversalClient, ttl time.Duration, max int) *RedisHistory {
	return &RedisHistory{client: client, ttl: ttl, max: max}
}

// Get loads and decodes the cached turns. redis.Nil is reported as a miss.
func (h *RedisHistory) Get(ctx context.Context, conversationID string) ([]domain.ChatTurn, bool, error) {
	raw, err := h.client.Get(ctx, HistoryKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history: %w", err)
	}

	var turns []domain.ChatTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, false, fmt.Errorf("decode cached history: %w", err)
	}
	return turns, true, nil
}

// Set stores the most recent turns as JSON and resets the key's TTL.
func (h *RedisHistory) Set(ctx context.Context, conversationID string, turns []domain.ChatTurn) error {
	raw, err := json.Marshal(lastN(turns, h.max))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.client.Set(ctx, HistoryKey(conversationID), raw, h.ttl).Err(); err != nil {
		return fmt.Errorf("redis set history: %w", err)
	}
	return nil
}

// Delete removes the given conversations in a single DEL.
func (h *RedisHistory) Delete(ctx context.Context, conversationIDs ...string) error {
	if len(conversationIDs) == 0 {
		return nil
	}
	keys := make([]string, len(conversationIDs))
	for i, id := range conversationIDs {
		keys[i] = HistoryKey(id)
	}
	if err := h.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete history: %w", err)
	}
	return nil
}

// Ping checks that the Redis server is reachable.
func (h *RedisHistory) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
