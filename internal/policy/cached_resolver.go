package policy

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheObserver is notified of cache lookups.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// CachedResolver wraps a SubjectResolver with an expiring LRU cache.
// This avoids hitting the database on every request. Users without role
// metadata are cached too; errors are not.
type CachedResolver struct {
	inner    SubjectResolver
	cache    *lru.LRU[string, *Subject]
	observer CacheObserver
}

// NewCachedResolver wraps a resolver with caching. size bounds the number
// of cached users and ttl how long an entry lives before re-fetching.
func NewCachedResolver(inner SubjectResolver, size int, ttl time.Duration, observer CacheObserver) *CachedResolver {
	return &CachedResolver{
		inner:    inner,
		cache:    lru.NewLRU[string, *Subject](size, nil, ttl),
		observer: observer,
	}
}

// Resolve returns the subject for the given user, using cache if available.
func (r *CachedResolver) Resolve(ctx context.Context, userID string) (*Subject, error) {
	if s, ok := r.cache.Get(userID); ok {
		if r.observer != nil {
			r.observer.CacheHit()
		}
		return s, nil
	}
	if r.observer != nil {
		r.observer.CacheMiss()
	}

	s, err := r.inner.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(userID, s)
	return s, nil
}

// Invalidate removes a user from the cache.
// Call this when a user's role or managed shelters change.
func (r *CachedResolver) Invalidate(userID string) {
	r.cache.Remove(userID)
}

// InvalidateAll clears the entire cache.
func (r *CachedResolver) InvalidateAll() {
	r.cache.Purge()
}

// Len returns the number of cached users.
func (r *CachedResolver) Len() int {
	return r.cache.Len()
}
