package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

type DocumentsHandler struct {
	store    vectorstore.VectorStore
	registry *registry.Registry
	cache    *searchcache.Cache
}

func NewDocumentsHandler(store vectorstore.VectorStore, reg *registry.Registry, cache *searchcache.Cache) *DocumentsHandler {
	return &DocumentsHandler{store: store, registry: reg, cache: cache}
}

// List serves GET /api/documents: filename -> per-collection chunk counts.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	docs := h.registry.List()
	out := make(map[string]map[string]int, len(docs))
	for _, doc := range docs {
		counts := make(map[string]int, len(doc.ChunkCounts))
		for collection, n := range doc.ChunkCounts {
			counts[string(collection)] = n
		}
		out[doc.Filename] = counts
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": out})
}

// DeleteAll serves DELETE /api/documents: clears every collection and
// returns the per-collection delete counts.
func (h *DocumentsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deleted := map[string]int{}
	for _, collection := range models.AllCollections {
		n, err := h.store.Delete(ctx, collection, vectorstore.Where{})
		if err != nil {
			writeError(w, err)
			return
		}
		deleted[string(collection)] = n
	}
	h.registry.ClearAll()
	if h.cache != nil {
		h.cache.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// Collections serves GET /api/collections: size and distinct documents
// per collection.
func (h *DocumentsHandler) Collections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := map[string]interface{}{}
	for _, collection := range models.AllCollections {
		count, err := h.store.Count(ctx, collection, vectorstore.Where{})
		if err != nil {
			writeError(w, err)
			return
		}
		docs, err := h.store.ListDistinct(ctx, collection, "document")
		if err != nil {
			writeError(w, err)
			return
		}
		out[string(collection)] = map[string]interface{}{
			"chunk_count":    count,
			"document_count": len(docs),
			"documents":      docs,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
