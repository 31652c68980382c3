package embedding

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an explicit, injectable store for query embeddings so repeated
// section queries within and across generation requests skip the embedding
// call. Created at process start; entries expire on their own.
type Cache struct {
	store *gocache.Cache
}

func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &Cache{
		store: gocache.New(ttl, cleanupInterval),
	}
}

func (c *Cache) Get(text string) ([]float32, bool) {
	if v, found := c.store.Get(text); found {
		if vec, ok := v.([]float32); ok {
			return vec, true
		}
	}
	return nil, false
}

func (c *Cache) Set(text string, vec []float32) {
	c.store.Set(text, vec, gocache.DefaultExpiration)
}

// Flush drops all entries, e.g. when the embedding model version changes.
func (c *Cache) Flush() {
	c.store.Flush()
}
