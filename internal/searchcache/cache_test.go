package searchcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ragcore/internal/models"
)

func result(id string) *models.SearchResultSet {
	return &models.SearchResultSet{SearchID: id, Query: "q-" + id}
}

func resultForDocs(id string, docs ...string) *models.SearchResultSet {
	return &models.SearchResultSet{SearchID: id, Query: "q-" + id, UniqueDocuments: docs}
}

func TestCachePutGet(t *testing.T) {
	c := New(4, time.Minute)
	c.Put(result("a"))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.SearchID)
}

func TestCacheMissing(t *testing.T) {
	c := New(4, time.Minute)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2, time.Minute)
	c.Put(result("a"))
	c.Put(result("b"))
	c.Get("a") // touch a, making b the LRU victim
	c.Put(result("c"))

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")

	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
	assert.Equal(t, 2, c.Len())
}

func TestCacheExpiresByTTL(t *testing.T) {
	c := New(4, time.Millisecond)
	c.Put(result("a"))
	frozen := c.now().Add(time.Hour)
	c.now = func() time.Time { return frozen }

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheEvictRemovesSingleEntry(t *testing.T) {
	c := New(4, time.Minute)
	c.Put(result("a"))
	c.Put(result("b"))

	assert.True(t, c.Evict("a"))
	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	assert.False(t, aOK)
	assert.True(t, bOK)

	assert.False(t, c.Evict("a"), "evicting an already-absent id reports false")
}

func TestCacheEvictByDocumentRemovesOnlyMatchingEntries(t *testing.T) {
	c := New(4, time.Minute)
	c.Put(resultForDocs("a", "doc1.txt", "doc2.txt"))
	c.Put(resultForDocs("b", "doc2.txt"))
	c.Put(resultForDocs("c", "doc3.txt"))

	n := c.EvictByDocument("doc2.txt")
	assert.Equal(t, 2, n)

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")
	assert.False(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
}

func TestCacheClearEmptiesEverything(t *testing.T) {
	c := New(4, time.Minute)
	c.Put(result("a"))
	c.Put(result("b"))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
