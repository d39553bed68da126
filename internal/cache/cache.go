// Package cache provides an injectable bounded cache so callers are not
// tied to one eviction backend.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is the capability the rest of the service depends on. Swap the
// implementation for a persistent or distributed cache without touching
// callers.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Purge()
}

// LRU is a size-bounded, oldest-evicted cache with time-based expiry.
type LRU[K comparable, V any] struct {
	inner *expirable.LRU[K, V]
}

// NewLRU builds an LRU holding at most size entries, each expiring
// after ttl. A zero ttl disables expiry.
func NewLRU[K comparable, V any](size int, ttl time.Duration) *LRU[K, V] {
	return &LRU[K, V]{inner: expirable.NewLRU[K, V](size, nil, ttl)}
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

func (c *LRU[K, V]) Set(key K, value V) {
	c.inner.Add(key, value)
}

func (c *LRU[K, V]) Delete(key K) {
	c.inner.Remove(key)
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.inner.Purge()
}

// Len reports the current entry count.
func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}
