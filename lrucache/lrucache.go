/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package lrucache provides a bounded, TTL-aware httpcache.Cache backend.
// It is the default store for federation lookups when no shared S3 bucket
// is configured.
package lrucache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key     string
	data    []byte
	expires time.Time
}

// Cache is an in-memory LRU with per-entry TTL. It implements
// httpcache.Cache and is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	ll         *list.List
	items      map[string]*list.Element

	// overridable for tests
	now func() time.Time
}

// New returns a Cache holding at most maxEntries entries, each valid for
// ttl after insertion. A zero ttl disables expiry; a non-positive
// maxEntries disables the size bound.
func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached payload for key, if present and unexpired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if !ent.expires.IsZero() && c.now().After(ent.expires) {
		c.removeElement(el)
		return nil, false
	}

	c.ll.MoveToFront(el)
	return ent.data, true
}

// Set stores data under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.data = data
		ent.expires = expires
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: key, data: data, expires: expires})
	c.items[key] = el

	if c.maxEntries > 0 && c.ll.Len() > c.maxEntries {
		c.removeElement(c.ll.Back())
	}
}

// Delete removes key from the cache if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ll.Len()
}

func (c *Cache) removeElement(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
}
