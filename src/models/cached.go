package models

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/Protocol-Lattice/waypoint/src/cache"
)

// CachedLLM wraps an Agent and caches Generate results by prompt.
// Only useful with a deterministic temperature.
type CachedLLM struct {
	Agent    Agent
	Cache    *cache.LRUCache
	FilePath string
}

// NewCachedLLM creates a new CachedLLM wrapper, restoring filePath when it exists.
func NewCachedLLM(agent Agent, size int, ttl time.Duration, filePath string) *CachedLLM {
	c := &CachedLLM{
		Agent:    agent,
		Cache:    cache.NewLRUCache(size, ttl),
		FilePath: filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

// WrapCached returns agent unchanged when size is not positive.
func WrapCached(agent Agent, size int, ttl time.Duration, filePath string) Agent {
	if size <= 0 {
		return agent
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return NewCachedLLM(agent, size, ttl, filePath)
}

func (c *CachedLLM) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return
	}
	defer f.Close()

	var dump map[string]cache.Entry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedLLM) save() {
	if c.FilePath == "" {
		return
	}

	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := json.NewEncoder(f).Encode(c.Cache.Dump()); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// Generate checks the cache before calling the underlying agent.
func (c *CachedLLM) Generate(ctx context.Context, prompt string) (any, error) {
	key := cache.HashKey(prompt)
	if val, ok := c.Cache.Get(key); ok {
		return val, nil
	}

	res, err := c.Agent.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	text := Text(res)
	c.Cache.Set(key, text)
	c.save()
	return text, nil
}
