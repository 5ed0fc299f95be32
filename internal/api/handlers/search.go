package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/search"
)

type SearchHandler struct {
	engine *search.Engine
}

func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

type searchRequestBody struct {
	Query             string             `json:"query"`
	TopK              int                `json:"top_k"`
	Collections       []string           `json:"collections"`
	Documents         []string           `json:"documents"`
	ExcludeDocuments  []string           `json:"exclude_documents"`
	Threshold         float64            `json:"threshold"`
}

// Search serves POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var collections []models.Collection
	for _, name := range body.Collections {
		c, err := models.ParseCollection(name)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		collections = append(collections, c)
	}

	result, err := h.engine.Search(r.Context(), search.Request{
		Query:       body.Query,
		TopK:        body.TopK,
		Collections: collections,
		Documents:   body.Documents,
		Exclude:     body.ExcludeDocuments,
		Threshold:   body.Threshold,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
