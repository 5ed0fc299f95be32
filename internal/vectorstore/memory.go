package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/nikhilbhutani/ragcore/internal/models"
)

// MemoryStore is an in-process VectorStore used by tests and DEMO_MODE runs
// without a database. Exact cosine-distance scan, no index — fine at test
// scale, never used outside tests and demos.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[models.Collection]map[models.ChunkID]UpsertItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[models.Collection]map[models.ChunkID]UpsertItem)}
}

func (s *MemoryStore) Upsert(_ context.Context, collection models.Collection, items []UpsertItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.rows[collection]
	if !ok {
		bucket = make(map[models.ChunkID]UpsertItem)
		s.rows[collection] = bucket
	}
	for _, item := range items {
		bucket[item.ChunkID] = item
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, collection models.Collection, vector []float32, k int, where Where) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []Hit
	for id, item := range s.rows[collection] {
		if !matches(id, item.Document, where) {
			continue
		}
		hits = append(hits, Hit{
			ChunkID:  id,
			Document: item.Document,
			Content:  item.Content,
			Distance: cosineDistance(vector, item.Vector),
			Metadata: item.Metadata,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *MemoryStore) List(_ context.Context, collection models.Collection, where Where) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []Hit
	for id, item := range s.rows[collection] {
		if !matches(id, item.Document, where) {
			continue
		}
		hits = append(hits, Hit{
			ChunkID:  id,
			Document: item.Document,
			Content:  item.Content,
			Metadata: item.Metadata,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ChunkID < hits[j].ChunkID })
	return hits, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection models.Collection, where Where) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.rows[collection]
	n := 0
	for id, item := range bucket {
		if matches(id, item.Document, where) {
			delete(bucket, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Count(_ context.Context, collection models.Collection, where Where) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for id, item := range s.rows[collection] {
		if matches(id, item.Document, where) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListDistinct(_ context.Context, collection models.Collection, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for id, item := range s.rows[collection] {
		v := item.Document
		if field == "chunk_id" {
			v = string(id)
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Heartbeat(_ context.Context) bool { return true }

func matches(id models.ChunkID, document string, where Where) bool {
	if len(where.DocumentIn) > 0 && !contains(where.DocumentIn, document) {
		return false
	}
	if len(where.DocumentNotIn) > 0 && contains(where.DocumentNotIn, document) {
		return false
	}
	if len(where.ChunkIDIn) > 0 {
		found := false
		for _, want := range where.ChunkIDIn {
			if want == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 1.0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 1.0
	}
	cosine := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	return 1 - cosine
}
