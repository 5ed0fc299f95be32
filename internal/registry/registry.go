// Package registry implements C9: an in-memory catalogue of known
// documents, rebuilt from the vector store's ListDistinct at startup so
// GET /api/documents never has to fan out to Postgres per request.
// Grounded on the teacher's internal/document registry, generalized to
// track per-collection chunk counts instead of a single count.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

type Registry struct {
	mu   sync.RWMutex
	docs map[string]*models.Document
}

func New() *Registry {
	return &Registry{docs: make(map[string]*models.Document)}
}

// Rebuild replaces the registry's contents with what the vector store
// currently holds, one ListDistinct call per collection. Called once at
// startup; safe to call again to force a resync.
func (r *Registry) Rebuild(ctx context.Context, store vectorstore.VectorStore) error {
	fresh := make(map[string]*models.Document)

	for _, collection := range models.AllCollections {
		filenames, err := store.ListDistinct(ctx, collection, "document")
		if err != nil {
			return fmt.Errorf("registry: list distinct %s: %w", collection, err)
		}
		for _, filename := range filenames {
			doc, ok := fresh[filename]
			if !ok {
				doc = models.NewDocument(filename)
				fresh[filename] = doc
			}
			count, err := store.Count(ctx, collection, vectorstore.Where{DocumentIn: []string{filename}})
			if err != nil {
				return fmt.Errorf("registry: count %s/%s: %w", filename, collection, err)
			}
			doc.ChunkCounts[collection] = count
		}
	}

	r.mu.Lock()
	r.docs = fresh
	r.mu.Unlock()
	return nil
}

func (r *Registry) Has(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[filename]
	return ok
}

func (r *Registry) HasCollection(filename string, collection models.Collection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[filename]
	return ok && doc.HasCollection(collection)
}

func (r *Registry) Get(filename string) (*models.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[filename]
	return doc, ok
}

func (r *Registry) List() []*models.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

// Record upserts a document's presence after a successful ingest into the
// given collection and sets its chunk count for that collection,
// replacing any earlier count.
func (r *Registry) Record(filename string, collection models.Collection, chunkCount int) *models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[filename]
	if !ok {
		doc = models.NewDocument(filename)
		r.docs[filename] = doc
	}
	doc.ChunkCounts[collection] = chunkCount
	return doc
}

// RecordHash stamps the content hash of the bytes last ingested for
// filename, so a subsequent forced re-ingest can compare against it and
// skip redundant work when the content hasn't changed.
func (r *Registry) RecordHash(filename string, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[filename]
	if !ok {
		doc = models.NewDocument(filename)
		r.docs[filename] = doc
	}
	doc.ContentHash = hash
}

// Forget removes a document entirely, used after a full delete.
func (r *Registry) Forget(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, filename)
}

func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = make(map[string]*models.Document)
}
