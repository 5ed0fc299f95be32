// Package searchcache implements C7: an in-process, mutex-guarded
// search-result cache with TTL expiry and LRU eviction at a fixed
// capacity. Grounded on the teacher's internal/memory.BufferMemory
// sliding-window idiom, generalized from a bounded slice of messages to a
// bounded map of results, keyed by search_id. No I/O happens under the
// lock, per the spec's concurrency note — eviction only touches in-memory
// structures.
package searchcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/nikhilbhutani/ragcore/internal/models"
)

type entry struct {
	id        string
	result    *models.SearchResultSet
	expiresAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Put stores a result set, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(result *models.SearchResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[result.SearchID]; ok {
		c.order.MoveToFront(el)
		el.Value.(*entry).result = result
		el.Value.(*entry).expiresAt = c.now().Add(c.ttl)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	el := c.order.PushFront(&entry{
		id:        result.SearchID,
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[result.SearchID] = el
}

// Get returns the cached result set for a search_id, or false if absent
// or expired. A hit moves the entry to the front of the LRU order.
func (c *Cache) Get(searchID string) (*models.SearchResultSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[searchID]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.items, searchID)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.result, true
}

// Evict removes a single search_id from the cache regardless of its TTL,
// for callers that know a result set is now stale (e.g. a re-ingest of one
// of its source documents). Returns false if the id wasn't cached.
func (c *Cache) Evict(searchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[searchID]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, searchID)
	return true
}

// EvictByDocument removes every cached result set whose hits touched the
// given document, for callers invalidating stale results after a
// re-ingest or delete rather than a single known search_id.
func (c *Cache) EvictByDocument(document string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		for _, d := range e.result.UniqueDocuments {
			if d == document {
				c.order.Remove(el)
				delete(c.items, e.id)
				n++
				break
			}
		}
		el = next
	}
	return n
}

// Clear empties the cache entirely, used after a bulk delete of every
// document wipes every collection.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order = list.New()
}

// EvictExpired sweeps the whole cache for TTL-expired entries. Safe to
// call periodically from a background ticker; cheap at cache-sized scale.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if now.After(e.expiresAt) {
			c.order.Remove(el)
			delete(c.items, e.id)
			n++
		}
		el = prev
	}
	return n
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.items, e.id)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
