// Package cache keeps recently used per-document derived values, bounded by
// entry count and by age.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Builder derives the cached value of a document at a given version.
type Builder[T any] func(uri string, version int32, text string) T

type entry[T any] struct {
	uri      string
	version  int32
	value    T
	lastUsed time.Time
}

// Cache is a least-recently-used cache keyed by document URI. Every entry is
// stamped with the document version it was built from and is rebuilt when a
// different version is requested.
type Cache[T any] struct {
	mu         sync.Mutex
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
	build      Builder[T]
	order      *list.List
	entries    map[string]*list.Element
	hits       int
	misses     int
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock used for age-based eviction.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache holding at most maxEntries documents, each dropped once
// it has not been used for maxAge. A zero maxAge disables age eviction.
func New[T any](maxEntries int, maxAge time.Duration, build Builder[T], opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[T]{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        o.now,
		build:      build,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the value for uri at version, building it when the entry is
// missing, expired or stamped with another version.
func (c *Cache[T]) Get(uri string, version int32, text string) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expire(now)

	if el, ok := c.entries[uri]; ok {
		e := el.Value.(*entry[T])
		if e.version == version {
			c.hits++
			e.lastUsed = now
			c.order.MoveToFront(el)
			return e.value
		}
		c.order.Remove(el)
		delete(c.entries, uri)
	}

	c.misses++
	e := &entry[T]{
		uri:      uri,
		version:  version,
		value:    c.build(uri, version, text),
		lastUsed: now,
	}
	c.entries[uri] = c.order.PushFront(e)
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[T]).uri)
	}
	return e.value
}

// Remove drops the entry for uri.
func (c *Cache[T]) Remove(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[uri]; ok {
		c.order.Remove(el)
		delete(c.entries, uri)
	}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the number of hits and builds since creation.
func (c *Cache[T]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func (c *Cache[T]) expire(now time.Time) {
	if c.maxAge <= 0 {
		return
	}
	for el := c.order.Back(); el != nil; {
		e := el.Value.(*entry[T])
		if now.Sub(e.lastUsed) < c.maxAge {
			// Entries are ordered by recency.
			return
		}
		prev := el.Prev()
		c.order.Remove(el)
		delete(c.entries, e.uri)
		el = prev
	}
}
