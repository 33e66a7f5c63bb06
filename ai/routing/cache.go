package routing

import (
	"time"

	"github.com/hrygo/taskgpt/ai/cache"
	"github.com/hrygo/taskgpt/ai/internal/strutil"
)

// RouterCache remembers model classifications of recent utterances, keyed
// by option set and folded utterance.
type RouterCache struct {
	cache *cache.LRUCache[string, Classification]
}

// CacheConfig contains configuration for RouterCache.
type CacheConfig struct {
	Capacity   int           // default: 500
	DefaultTTL time.Duration // default: 30min
}

// NewRouterCache creates a router cache.
func NewRouterCache(cfg CacheConfig) *RouterCache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 500
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * time.Minute
	}
	return &RouterCache{cache: cache.NewLRUCache[string, Classification](cfg.Capacity, cfg.DefaultTTL)}
}

// Get returns the cached classification of utterance within set.
func (c *RouterCache) Get(set OptionSet, utterance string) (Classification, bool) {
	return c.cache.Get(cacheKey(set, utterance))
}

// Set stores a classification with the default TTL.
func (c *RouterCache) Set(set OptionSet, utterance string, result Classification) {
	c.cache.Set(cacheKey(set, utterance), result, 0)
}

// Size returns the number of cached entries.
func (c *RouterCache) Size() int {
	return c.cache.Size()
}

func cacheKey(set OptionSet, utterance string) string {
	return set.Name + "\x00" + strutil.FoldTitle(utterance)
}
