package cache

import (
	"context"
	"sync"
	"time"

	shardedcache "github.com/simp-lee/cache"

	"github.com/simp-lee/genbot/internal/domain"
)

const (
	memoryShards          = 16
	minMemoryCleanupEvery = time.Minute
)

// MemoryHistory is an in-process HistoryStore used when Redis is disabled.
// Expired entries are dropped on access and by a background cleaner, so
// Close must be called to stop it.
type MemoryHistory struct {
	store     shardedcache.CacheInterface
	ttl       time.Duration
	max       int
	closeOnce sync.Once
}

// NewMemoryHistory returns an empty MemoryHistory. A zero ttl never expires.
func NewMemoryHistory(ttl time.Duration, maxTurns int) *MemoryHistory {
	opts := shardedcache.Options{
		DefaultExpiration: ttl,
		ShardCount:        memoryShards,
	}
	if ttl > 0 {
		opts.CleanupInterval = max(ttl, minMemoryCleanupEvery)
	}
	return &MemoryHistory{
		store: shardedcache.NewCache(opts),
		ttl:   ttl,
		max:   maxTurns,
	}
}

// Get returns a copy of the cached turns of a conversation. A missing or
// expired entry is a miss.
func (h *MemoryHistory) Get(_ context.Context, conversationID string) ([]domain.ChatTurn, bool, error) {
	turns, ok := shardedcache.GetTyped[[]domain.ChatTurn](h.store, HistoryKey(conversationID))
	if !ok {
		return nil, false, nil
	}
	return lastN(turns, 0), true, nil
}

// Set replaces the cached turns of a conversation with the most recent ones
// and restarts the entry's ttl.
func (h *MemoryHistory) Set(_ context.Context, conversationID string, turns []domain.ChatTurn) error {
	expiration := shardedcache.NoExpiration
	if h.ttl > 0 {
		expiration = h.ttl
	}
	h.store.SetWithExpiration(HistoryKey(conversationID), lastN(turns, h.max), expiration)
	return nil
}

// Delete drops the given conversations. Unknown IDs are ignored.
func (h *MemoryHistory) Delete(_ context.Context, conversationIDs ...string) error {
	if len(conversationIDs) == 0 {
		return nil
	}
	keys := make([]string, len(conversationIDs))
	for i, id := range conversationIDs {
		keys[i] = HistoryKey(id)
	}
	h.store.DeleteKeys(keys)
	return nil
}

// Ping always succeeds.
func (h *MemoryHistory) Ping(context.Context) error { return nil }

// Len reports how many entries are held, including expired ones the cleaner
// has not dropped yet.
func (h *MemoryHistory) Len() int {
	return h.store.Count()
}

// Close stops the background cleaner. It is safe to call more than once.
func (h *MemoryHistory) Close() error {
	h.closeOnce.Do(h.store.Close)
	return nil
}
