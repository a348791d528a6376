package mem

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LoaderCache memoizes expensive loads for a fixed TTL. Concurrent misses on the same key
// share a single load.
type LoaderCache struct {
	store *gocache.Cache
	group singleflight.Group
}

func NewLoaderCache(ttl time.Duration) *LoaderCache {
	return &LoaderCache{store: gocache.New(ttl, 2*ttl)}
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Failed loads are not cached.
func (c *LoaderCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store.SetDefault(key, loaded)
		return loaded, nil
	})
	return v, err
}

func (c *LoaderCache) Invalidate(key string) {
	c.store.Delete(key)
}
