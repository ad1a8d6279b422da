package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Entry is a cached completion together with its expiry.
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LRUCache is a thread-safe LRU cache of completion texts with a fixed TTL.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
}

type element struct {
	key   string
	entry Entry
}

// NewLRUCache creates a cache holding at most capacity entries, each valid for ttl.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key. Expired entries are dropped on access.
func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	el := elem.Value.(*element)
	if c.now().After(el.entry.ExpiresAt) {
		c.remove(elem)
		return "", false
	}
	c.lru.MoveToFront(elem)
	return el.entry.Value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *LRUCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{Value: value, ExpiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value.(*element).entry = entry
		c.lru.MoveToFront(elem)
		return
	}
	c.items[key] = c.lru.PushFront(&element{key: key, entry: entry})
	c.evict()
}

// Len returns the number of entries, including ones that expired but were not yet touched.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

// Dump returns a snapshot of the live entries for persistence.
func (c *LRUCache) Dump() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dump := make(map[string]Entry, len(c.items))
	for k, elem := range c.items {
		entry := elem.Value.(*element).entry
		if now.After(entry.ExpiresAt) {
			continue
		}
		dump[k] = entry
	}
	return dump
}

// Restore replaces the cache contents with the unexpired entries of dump.
func (c *LRUCache) Restore(dump map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Init()
	c.items = make(map[string]*list.Element, c.capacity)

	now := c.now()
	for k, v := range dump {
		if now.After(v.ExpiresAt) {
			continue
		}
		c.items[k] = c.lru.PushFront(&element{key: k, entry: v})
	}
	c.evict()
}

func (c *LRUCache) evict() {
	for c.lru.Len() > c.capacity {
		c.remove(c.lru.Back())
	}
}

func (c *LRUCache) remove(elem *list.Element) {
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*element).key)
}

// HashKey derives a fixed-size cache key from a prompt.
func HashKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(h[:])
}
