package resolver

import (
	"sync"

	"github.com/palemoky/poetry-importer/internal/supabase"
)

// idCache remembers ids the backend confirmed, keyed by name.
type idCache struct {
	mu  sync.RWMutex
	ids map[string]supabase.ID
}

func newIDCache() *idCache {
	return &idCache{ids: make(map[string]supabase.ID)}
}

func (c *idCache) get(name string) (supabase.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[name]
	return id, ok
}

func (c *idCache) put(name string, id supabase.ID) {
	c.mu.Lock()
	c.ids[name] = id
	c.mu.Unlock()
}

func (c *idCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

func (c *idCache) clear() {
	c.mu.Lock()
	c.ids = make(map[string]supabase.ID)
	c.mu.Unlock()
}
