package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	domainerrors "talka.backend/internal/domain/errors"
)

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// LRUCache is a bounded in-process CacheStore. The least recently used entry is
// evicted when capacity is reached; expired entries are dropped on read and by
// PurgeExpired.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

// NewLRUCache returns a cache holding at most capacity entries.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, domainerrors.ErrCacheMiss
	}
	entry := el.Value.(*lruEntry)
	if c.expired(entry) {
		c.removeElement(el)
		return nil, domainerrors.ErrCacheMiss
	}
	c.ll.MoveToFront(el)

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value. A non-positive ttl stores an entry that never expires.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*lruEntry)
		entry.value = stored
		entry.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return nil
	}

	el := c.ll.PushFront(&lruEntry{key: key, value: stored, expiresAt: expiresAt})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		c.removeElement(c.ll.Back())
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	return nil
}

// PurgeExpired drops every expired entry and returns how many were removed.
func (c *LRUCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*lruEntry)) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRUCache) expired(e *lruEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *LRUCache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry).key)
}
