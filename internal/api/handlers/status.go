package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

type StatusHandler struct {
	store    vectorstore.VectorStore
	registry *registry.Registry
}

func NewStatusHandler(store vectorstore.VectorStore, reg *registry.Registry) *StatusHandler {
	return &StatusHandler{store: store, registry: reg}
}

// Status serves GET /status: vector store heartbeat plus per-collection
// counts, so an operator can see liveness without touching /api.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts := map[string]int{}
	for _, collection := range models.AllCollections {
		n, err := h.store.Count(ctx, collection, vectorstore.Where{})
		if err != nil {
			writeError(w, err)
			return
		}
		counts[string(collection)] = n
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"vector_store_up": h.store.Heartbeat(ctx),
		"collection_counts": counts,
		"document_count":  len(h.registry.List()),
	})
}
